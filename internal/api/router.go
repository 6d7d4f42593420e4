package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parking-allocation-backend/config"
	"parking-allocation-backend/internal/mw"
	"parking-allocation-backend/internal/notification"
	"parking-allocation-backend/internal/parking"
	"parking-allocation-backend/internal/spotname"
	"parking-allocation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, gateway *parking.Gateway, scheme *spotname.Scheme, receipts *notification.WorkerPool, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, gateway, scheme, receipts, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Scan core
		api.POST("/parking/scan", handler.PostScan)
		api.POST("/parking/generate-token", handler.PostGenerateToken)
		api.POST("/parking/current-session", handler.PostCurrentSession)

		// Lot configuration
		api.GET("/parking/config", handler.GetParkingConfig)
		api.POST("/parking/config", handler.UpdateParkingConfig)

		// Spot administration
		api.GET("/spots", caching, GetSpots(db))
		api.POST("/spots", CreateSpot(db, scheme))
		api.PATCH("/spots/:id", UpdateSpotStatus(db))
		api.PATCH("/spots/:id/coordinates", UpdateSpotCoordinates(db))
		api.DELETE("/spots/:id", DeleteSpot(db))

		// Preferences
		api.PUT("/users/preference", handler.PutPreference)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
