package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/internal/service"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
)

// KnowledgeHandler handles HTTP requests for knowledge articles
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(service *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: service}
}

// GetArticles handles GET /api/v1/knowledge
func (h *KnowledgeHandler) GetArticles(c *gin.Context) {
	articles := h.service.ListAll()
	response.Success(c, gin.H{
		"data":  articles,
		"total": len(articles),
	})
}

// GetArticleByID handles GET /api/v1/knowledge/:id
func (h *KnowledgeHandler) GetArticleByID(c *gin.Context) {
	id := c.Param("id")
	article, ok := h.service.Get(id)
	if !ok {
		response.NotFound(c, "Article not found")
		return
	}

	ctx := c.Request.Context()
	favorite, err := h.service.IsFavorite(ctx, identity.FromContext(ctx), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"article":  article,
		"favorite": favorite,
	})
}

// GetFavorites handles GET /api/v1/knowledge/favorites
func (h *KnowledgeHandler) GetFavorites(c *gin.Context) {
	ctx := c.Request.Context()
	articles, err := h.service.Favorites(ctx, identity.FromContext(ctx))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":  articles,
		"total": len(articles),
	})
}

// ToggleFavorite handles POST /api/v1/knowledge/:id/favorite
func (h *KnowledgeHandler) ToggleFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	on, err := h.service.ToggleFavorite(ctx, identity.FromContext(ctx), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":       id,
		"favorite": on,
	})
}
