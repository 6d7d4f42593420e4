package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-allocation-backend/internal/model"
)

// GetParkingConfig handles GET /api/parking/config. The single config
// record is created with default coordinates if it does not exist yet.
func (h *Handler) GetParkingConfig(c *gin.Context) {
	cfg, err := h.store.GetParkingConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parking config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type updateConfigRequest struct {
	EntranceLat float64 `json:"entranceLat" binding:"required"`
	EntranceLng float64 `json:"entranceLng" binding:"required"`
	ExitLat     float64 `json:"exitLat" binding:"required"`
	ExitLng     float64 `json:"exitLng" binding:"required"`
	ShopLat     float64 `json:"shopLat" binding:"required"`
	ShopLng     float64 `json:"shopLng" binding:"required"`
}

// UpdateParkingConfig handles POST /api/parking/config, targeting the one
// existing record or creating it if missing.
func (h *Handler) UpdateParkingConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.store.UpdateParkingConfig(c.Request.Context(), &model.ParkingConfig{
		EntranceLat: req.EntranceLat,
		EntranceLng: req.EntranceLng,
		ExitLat:     req.ExitLat,
		ExitLng:     req.ExitLng,
		ShopLat:     req.ShopLat,
		ShopLng:     req.ShopLng,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update parking config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
