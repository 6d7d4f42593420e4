package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-allocation-backend/internal/allocation"
	"parking-allocation-backend/internal/parking"
	"parking-allocation-backend/internal/store"
)

type scanRequest struct {
	Token  string `json:"token" binding:"required"`
	SpotID *int64 `json:"spotId"`
}

// PostScan handles POST /api/parking/scan: one scan event, inferred as
// arrival or departure from the user's session state.
func (h *Handler) PostScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gateway.Scan(c.Request.Context(), req.Token, req.SpotID)
	if err != nil {
		status := scanErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if result.Action == parking.ActionExit && h.receipts != nil {
		h.receipts.Dispatch(result.Session.ID)
	}

	c.JSON(http.StatusOK, result)
}

func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidToken), errors.Is(err, parking.ErrSpotNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrSpotUnavailable), errors.Is(err, allocation.ErrNoAvailableSpot):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrUserAlreadyParked), errors.Is(err, store.ErrSessionAlreadyClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type generateTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PostGenerateToken handles POST /api/parking/generate-token.
func (h *Handler) PostGenerateToken(c *gin.Context) {
	var req generateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.gateway.IssueToken(c.Request.Context(), req.Email)
	if errors.Is(err, parking.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grant)
}

type currentSessionRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PostCurrentSession handles POST /api/parking/current-session.
func (h *Handler) PostCurrentSession(c *gin.Context) {
	var req currentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.gateway.CurrentSession(c.Request.Context(), req.Email)
	if errors.Is(err, parking.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
