package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-allocation-backend/internal/model"
	"parking-allocation-backend/internal/store"
)

type updatePreferenceRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	PreferredSpot *string `json:"preferredSpot"`
}

// PutPreference handles PUT /api/users/preference. The preference value is
// validated against the same naming scheme the allocation path uses, so the
// two can never disagree about what a valid spot name is.
func (h *Handler) PutPreference(c *gin.Context) {
	var req updatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.FindUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	prefType := model.PreferenceNone
	preferredSpot := ""
	message := "Preferred spot cleared"

	if req.PreferredSpot != nil && *req.PreferredSpot != "" {
		value := *req.PreferredSpot
		switch {
		case h.scheme.Valid(value):
			prefType = model.PreferenceSpecific
			preferredSpot = value
			message = "Preferred spot set to " + value
		case value == "entrance":
			prefType = model.PreferenceEntrance
			message = "Preference set to: Closest to entrance"
		case value == "exit":
			prefType = model.PreferenceExit
			message = "Preference set to: Closest to exit"
		case value == "shop":
			prefType = model.PreferenceShop
			message = "Preference set to: Closest to shop"
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid preference. Must be " + h.scheme.Describe() + ", entrance, exit, or shop",
			})
			return
		}
	}

	if err := h.store.SetPreference(c.Request.Context(), user.ID, prefType, preferredSpot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            message,
		"preferredSpot":      preferredSpot,
		"spotPreferenceType": prefType,
	})
}
