package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/service"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
)

// ThemeHandler handles HTTP requests for theme settings
type ThemeHandler struct {
	service *service.ThemeService
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(service *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{service: service}
}

// GetTheme handles GET /api/v1/theme
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	ctx := c.Request.Context()
	theme, err := h.service.Get(ctx, identity.FromContext(ctx))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, theme)
}

// UpdateTheme handles PUT /api/v1/theme
func (h *ThemeHandler) UpdateTheme(c *gin.Context) {
	var update models.ThemeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	theme, err := h.service.Update(ctx, identity.FromContext(ctx), update)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, theme)
}
