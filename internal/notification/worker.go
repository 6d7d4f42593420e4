package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"parking-allocation-backend/internal/model"
)

// ReceiptSender defines the interface for sending a web push notification.
type ReceiptSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of ReceiptSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// receiptPayload is the JSON body pushed to the user's devices after exit.
type receiptPayload struct {
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	SpotName        string    `json:"spotName"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int       `json:"durationSeconds"`
}

// WorkerPool manages a pool of workers sending departure receipts.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  ReceiptSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case sessionID := <-wp.jobs:
			log.Printf("Worker %d processing session %d", id, sessionID)
			wp.sendReceiptForSession(ctx, sessionID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a closed session to the worker pool.
func (wp *WorkerPool) Dispatch(sessionID int64) {
	wp.jobs <- sessionID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendReceiptForSession fetches the closed session and pushes a receipt to
// every subscription the session's user registered.
func (wp *WorkerPool) sendReceiptForSession(ctx context.Context, sessionID int64) {
	var session model.Session
	if err := wp.db.WithContext(ctx).Preload("Spot").First(&session, sessionID).Error; err != nil {
		log.Printf("Error fetching session %d: %v", sessionID, err)
		return
	}
	if session.EndTime == nil {
		log.Printf("Session %d is still open; skipping receipt", sessionID)
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).
		Where("user_id = ?", session.UserID).
		Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for user %d: %v", session.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	duration := session.EndTime.Sub(session.StartTime)
	payload, err := json.Marshal(receiptPayload{
		Title:           "Parking session ended",
		Body:            fmt.Sprintf("Spot %s, parked for %s", session.Spot.Name, duration.Round(time.Minute)),
		SpotName:        session.Spot.Name,
		StartTime:       session.StartTime,
		EndTime:         *session.EndTime,
		DurationSeconds: int(duration.Seconds()),
	})
	if err != nil {
		log.Printf("Error marshalling receipt for session %d: %v", sessionID, err)
		return
	}

	log.Printf("Sending %d receipts for session %d", len(subscriptions), sessionID)
	for _, sub := range subscriptions {
		wp.sendReceipt(ctx, sub, payload)
	}
}

// sendReceipt sends a single web push notification.
func (wp *WorkerPool) sendReceipt(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending receipt to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
