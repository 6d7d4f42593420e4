package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"parking-allocation-backend/internal/notification"
	"parking-allocation-backend/internal/parking"
	"parking-allocation-backend/internal/spotname"
	"parking-allocation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	gateway  *parking.Gateway
	scheme   *spotname.Scheme
	receipts *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, gateway *parking.Gateway, scheme *spotname.Scheme, receipts *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		gateway:  gateway,
		scheme:   scheme,
		receipts: receipts,
		webpush:  webpushOptions,
	}
}
