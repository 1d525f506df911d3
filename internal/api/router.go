package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/handler"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/internal/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Air        *handler.AirHandler
	Reports    *handler.ReportHandler
	Knowledge  *handler.KnowledgeHandler
	DropPoints *handler.DropPointHandler
	Theme      *handler.ThemeHandler
}

// Options configures the middleware chain and static serving
type Options struct {
	Logger         *zap.Logger
	Verifier       identity.Verifier       // nil: every caller is a guest
	RateLimiter    *middleware.RateLimiter // nil: no rate limit
	PhotoDir       string                  // local blob root served under /photos, empty to disable
	MaxUploadBytes int64
}

// SetupRouter builds the gin engine
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Green Guardian API is running",
		})
	})

	if opts.PhotoDir != "" {
		r.Static("/photos", opts.PhotoDir)
	}

	// bulk imports need a signed-in caller unless auth is disabled
	signedIn := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if opts.Verifier != nil {
		signedIn = middleware.RequireUser()
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(opts.Verifier, log))
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimit(opts.RateLimiter))
	}
	{
		api.GET("/air", h.Air.GetCurrent)
		api.GET("/aqi/mock", h.Air.GetMock)

		reports := api.Group("/reports")
		{
			reports.GET("", h.Reports.GetReports)
			reports.POST("", h.Reports.CreateReport)
			reports.GET("/mine", h.Reports.GetMyReports)
			reports.POST("/export", h.Reports.ExportReports)
			reports.POST("/import", signedIn, h.Reports.ImportReports)
			reports.GET("/:id", h.Reports.GetReportByID)
			reports.PUT("/:id", h.Reports.UpdateReport)
			reports.DELETE("/:id", h.Reports.DeleteReport)
		}

		knowledge := api.Group("/knowledge")
		{
			knowledge.GET("", h.Knowledge.GetArticles)
			knowledge.GET("/favorites", h.Knowledge.GetFavorites)
			knowledge.GET("/:id", h.Knowledge.GetArticleByID)
			knowledge.POST("/:id/favorite", h.Knowledge.ToggleFavorite)
		}

		api.GET("/drop-points", h.DropPoints.GetDropPoints)

		api.GET("/theme", h.Theme.GetTheme)
		api.PUT("/theme", h.Theme.UpdateTheme)
	}

	return r
}
