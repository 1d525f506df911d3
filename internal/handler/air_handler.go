package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/greenguardian-backend-go/internal/airquality"
	"github.com/jengzang/greenguardian-backend-go/internal/aqi"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/spatial"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
)

// AirHandler handles HTTP requests for air quality
type AirHandler struct {
	service *airquality.Service
}

// NewAirHandler creates a new air quality handler
func NewAirHandler(service *airquality.Service) *AirHandler {
	return &AirHandler{service: service}
}

// bindCoords reads and checks the lat/lon query parameters
func bindCoords(c *gin.Context) (float64, float64, bool) {
	var q models.CoordinateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "lat and lon query parameters are required")
		return 0, 0, false
	}
	if !spatial.ValidLatLon(*q.Lat, *q.Lon) {
		response.BadRequest(c, "lat/lon out of range")
		return 0, 0, false
	}
	return *q.Lat, *q.Lon, true
}

// GetCurrent handles GET /api/v1/air
func (h *AirHandler) GetCurrent(c *gin.Context) {
	lat, lon, ok := bindCoords(c)
	if !ok {
		return
	}

	result, sample, err := h.service.Current(c.Request.Context(), lat, lon)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"aqi":    result,
		"sample": sample,
	})
}

// GetMock handles GET /api/v1/aqi/mock
func (h *AirHandler) GetMock(c *gin.Context) {
	lat, lon, ok := bindCoords(c)
	if !ok {
		return
	}
	response.Success(c, aqi.MockFromCoords(lat, lon))
}
