package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"parking-allocation-backend/internal/model"
	"parking-allocation-backend/internal/spotname"
)

// GetSpots handles GET /api/spots, returning all spots ordered by name.
func GetSpots(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var spots []model.Spot
		if err := db.Order("name asc").Find(&spots).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spots"})
			return
		}
		c.JSON(http.StatusOK, spots)
	}
}

type createSpotRequest struct {
	Name string   `json:"name" binding:"required"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// CreateSpot handles POST /api/spots.
func CreateSpot(db *gorm.DB, scheme *spotname.Scheme) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSpotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !scheme.Valid(req.Name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Spot name must be in " + scheme.Describe()})
			return
		}

		spot := model.Spot{
			Name:   req.Name,
			Status: model.SpotAvailable,
			Lat:    req.Lat,
			Lng:    req.Lng,
		}
		if err := db.Create(&spot).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Spot already exists"})
			return
		}
		c.JSON(http.StatusCreated, spot)
	}
}

type updateSpotStatusRequest struct {
	Status model.SpotStatus `json:"status" binding:"required"`
}

// UpdateSpotStatus handles PATCH /api/spots/:id.
func UpdateSpotStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		spotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot ID"})
			return
		}

		var req updateSpotStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Status != model.SpotAvailable && req.Status != model.SpotOccupied {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be available or occupied"})
			return
		}

		spot, ok := loadSpot(c, db, spotID)
		if !ok {
			return
		}
		if err := db.Model(spot).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update spot"})
			return
		}
		spot.Status = req.Status
		c.JSON(http.StatusOK, spot)
	}
}

type updateSpotCoordinatesRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// UpdateSpotCoordinates handles PATCH /api/spots/:id/coordinates.
func UpdateSpotCoordinates(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		spotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot ID"})
			return
		}

		var req updateSpotCoordinatesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		spot, ok := loadSpot(c, db, spotID)
		if !ok {
			return
		}
		if err := db.Model(spot).Updates(map[string]any{"lat": req.Lat, "lng": req.Lng}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update spot"})
			return
		}
		spot.Lat, spot.Lng = &req.Lat, &req.Lng
		c.JSON(http.StatusOK, spot)
	}
}

// DeleteSpot handles DELETE /api/spots/:id. A spot with an open session
// cannot be deleted.
func DeleteSpot(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		spotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot ID"})
			return
		}

		var openSessions int64
		if err := db.Model(&model.Session{}).
			Where("spot_id = ? AND end_time IS NULL", spotID).
			Count(&openSessions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check spot sessions"})
			return
		}
		if openSessions > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Spot has an open session"})
			return
		}

		res := db.Delete(&model.Spot{}, spotID)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete spot"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func loadSpot(c *gin.Context, db *gorm.DB, spotID int64) (*model.Spot, bool) {
	var spot model.Spot
	err := db.First(&spot, spotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spot"})
		return nil, false
	}
	return &spot, true
}
