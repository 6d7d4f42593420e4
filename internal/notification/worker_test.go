package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"parking-allocation-backend/internal/model"
)

// mockSender is a mock implementation of the ReceiptSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gormDB.AutoMigrate(&model.User{}, &model.Spot{}, &model.Session{}, &model.PushSubscription{}))
	return gormDB
}

func pushResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newTestDB(t), &webpush.Options{})

	wp.Dispatch(123)

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, int64(123), job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestSendReceiptForSession(t *testing.T) {
	gormDB := newTestDB(t)

	user := model.User{Email: "driver@example.com"}
	require.NoError(t, gormDB.Create(&user).Error)
	spot := model.Spot{Name: "A3", Status: model.SpotAvailable}
	require.NoError(t, gormDB.Create(&spot).Error)

	end := time.Now().UTC()
	start := end.Add(-83 * time.Minute)
	session := model.Session{UserID: user.ID, SpotID: spot.ID, StartTime: start, EndTime: &end}
	require.NoError(t, gormDB.Create(&session).Error)

	subscription := model.PushSubscription{
		Endpoint: "https://push.example.com/abc",
		P256DH:   "p256dh-key",
		Auth:     "auth-key",
		UserID:   user.ID,
	}
	require.NoError(t, gormDB.Create(&subscription).Error)

	var sent [][]byte
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://push.example.com/abc", sub.Endpoint)
			sent = append(sent, payload)
			return pushResponse(http.StatusCreated), nil
		},
	}

	wp.sendReceiptForSession(context.Background(), session.ID)

	require.Len(t, sent, 1)
	var payload receiptPayload
	require.NoError(t, json.Unmarshal(sent[0], &payload))
	assert.Equal(t, "Parking session ended", payload.Title)
	assert.Equal(t, "A3", payload.SpotName)
	assert.Equal(t, int(end.Sub(start).Seconds()), payload.DurationSeconds)
}

func TestSendReceiptSkipsOpenSession(t *testing.T) {
	gormDB := newTestDB(t)

	user := model.User{Email: "driver@example.com"}
	require.NoError(t, gormDB.Create(&user).Error)
	spot := model.Spot{Name: "A1", Status: model.SpotOccupied}
	require.NoError(t, gormDB.Create(&spot).Error)
	session := model.Session{UserID: user.ID, SpotID: spot.ID, StartTime: time.Now()}
	require.NoError(t, gormDB.Create(&session).Error)

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			t.Fatal("no receipt should be sent for an open session")
			return nil, nil
		},
	}

	wp.sendReceiptForSession(context.Background(), session.ID)
}

func TestSendReceiptDeletesExpiredSubscription(t *testing.T) {
	gormDB := newTestDB(t)

	user := model.User{Email: "driver@example.com"}
	require.NoError(t, gormDB.Create(&user).Error)
	spot := model.Spot{Name: "B2", Status: model.SpotAvailable}
	require.NoError(t, gormDB.Create(&spot).Error)

	end := time.Now().UTC()
	start := end.Add(-10 * time.Minute)
	session := model.Session{UserID: user.ID, SpotID: spot.ID, StartTime: start, EndTime: &end}
	require.NoError(t, gormDB.Create(&session).Error)

	subscription := model.PushSubscription{
		Endpoint: "https://push.example.com/stale",
		P256DH:   "p256dh-key",
		Auth:     "auth-key",
		UserID:   user.ID,
	}
	require.NoError(t, gormDB.Create(&subscription).Error)

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return pushResponse(http.StatusGone), nil
		},
	}

	wp.sendReceiptForSession(context.Background(), session.ID)

	var remaining int64
	require.NoError(t, gormDB.Model(&model.PushSubscription{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
