package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/service"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
)

// DropPointHandler handles HTTP requests for collection points
type DropPointHandler struct {
	service *service.DropPointService
}

// NewDropPointHandler creates a new drop point handler
func NewDropPointHandler(service *service.DropPointService) *DropPointHandler {
	return &DropPointHandler{service: service}
}

// GetDropPoints handles GET /api/v1/drop-points
func (h *DropPointHandler) GetDropPoints(c *gin.Context) {
	var filter models.DropPointFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	points, err := h.service.Search(filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":  points,
		"total": len(points),
	})
}
