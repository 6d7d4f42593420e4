package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-allocation-backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUserAlreadyParked is returned by OpenSession when the user already
	// has an open session. The gateway should never hit this; it indicates
	// a caller bug or a lost race.
	ErrUserAlreadyParked = errors.New("user already has an open session")

	// ErrSessionAlreadyClosed is returned by CloseSession when the session's
	// end time is already set.
	ErrSessionAlreadyClosed = errors.New("session already closed")
)

// Store defines the interface for all database operations the allocation
// core performs. The spot registry and session ledger are both backed by
// the same store so the HTTP layer has a single dependency to inject.
type Store interface {
	DB() *gorm.DB

	// User / token lookup.
	FindUserByToken(ctx context.Context, token string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetScanToken(ctx context.Context, userID int64, token string) error
	SetPreference(ctx context.Context, userID int64, prefType model.PreferenceType, preferredSpot string) error

	// Spot registry.
	ListAvailableSpots(ctx context.Context) ([]model.Spot, error)
	GetSpot(ctx context.Context, spotID int64) (*model.Spot, error)
	TryReserveSpot(ctx context.Context, spotID int64) (bool, error)
	ReleaseSpot(ctx context.Context, spotID int64) error

	// Session ledger.
	FindOpenSession(ctx context.Context, userID int64) (*model.Session, error)
	OpenSession(ctx context.Context, userID, spotID int64, now time.Time) (*model.Session, error)
	CloseSession(ctx context.Context, sessionID int64, now time.Time) (*model.Session, error)

	// Lot configuration.
	GetParkingConfig(ctx context.Context) (*model.ParkingConfig, error)
	UpdateParkingConfig(ctx context.Context, cfg *model.ParkingConfig) (*model.ParkingConfig, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for thin CRUD handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("scan_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by token: %w", err)
	}
	return &user, nil
}

func (s *gormStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return &user, nil
}

func (s *gormStore) SetScanToken(ctx context.Context, userID int64, token string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("scan_token", token)
	if res.Error != nil {
		return fmt.Errorf("failed to set scan token for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) SetPreference(ctx context.Context, userID int64, prefType model.PreferenceType, preferredSpot string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"preference_type": prefType,
			"preferred_spot":  preferredSpot,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update preference for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAvailableSpots returns an advisory snapshot of the available pool,
// ordered by name. The snapshot may be stale by the time a reservation is
// attempted; TryReserveSpot is what actually decides.
func (s *gormStore) ListAvailableSpots(ctx context.Context) ([]model.Spot, error) {
	var spots []model.Spot
	if err := s.db.WithContext(ctx).
		Where("status = ?", model.SpotAvailable).
		Order("name asc").
		Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to list available spots: %w", err)
	}
	return spots, nil
}

func (s *gormStore) GetSpot(ctx context.Context, spotID int64) (*model.Spot, error) {
	var spot model.Spot
	err := s.db.WithContext(ctx).First(&spot, spotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot %d: %w", spotID, err)
	}
	return &spot, nil
}

// TryReserveSpot flips a spot from available to occupied with a single
// conditional update. Exactly one of any number of concurrent callers
// observes RowsAffected == 1; everyone else lost the race.
func (s *gormStore) TryReserveSpot(ctx context.Context, spotID int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Spot{}).
		Where("id = ? AND status = ?", spotID, model.SpotAvailable).
		Update("status", model.SpotOccupied)
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve spot %d: %w", spotID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSpot transitions a spot back to available after its session closed.
func (s *gormStore) ReleaseSpot(ctx context.Context, spotID int64) error {
	res := s.db.WithContext(ctx).Model(&model.Spot{}).
		Where("id = ?", spotID).
		Update("status", model.SpotAvailable)
	if res.Error != nil {
		return fmt.Errorf("failed to release spot %d: %w", spotID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOpenSession returns the user's open session, or nil when the user is
// not currently parked.
func (s *gormStore) FindOpenSession(ctx context.Context, userID int64) (*model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Preload("Spot").
		Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time desc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open session for user %d: %w", userID, err)
	}
	return &session, nil
}

// OpenSession creates a new open session for the user. The one-open-session-
// per-user invariant is re-checked inside the transaction even though the
// gateway routes parked users to the exit path.
func (s *gormStore) OpenSession(ctx context.Context, userID, spotID int64, now time.Time) (*model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Session{}).
			Where("user_id = ? AND end_time IS NULL", userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check open sessions for user %d: %w", userID, err)
		}
		if count > 0 {
			return ErrUserAlreadyParked
		}

		session = model.Session{
			UserID:    userID,
			SpotID:    spotID,
			StartTime: now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session for user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Spot").First(&session, session.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload session %d: %w", session.ID, err)
	}
	return &session, nil
}

// CloseSession sets the session's end time. The update is conditional on the
// end time still being null, so a double close surfaces as
// ErrSessionAlreadyClosed rather than silently rewriting history.
func (s *gormStore) CloseSession(ctx context.Context, sessionID int64, now time.Time) (*model.Session, error) {
	res := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND end_time IS NULL", sessionID).
		Update("end_time", now)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to close session %d: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		var existing model.Session
		err := s.db.WithContext(ctx).First(&existing, sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to inspect session %d: %w", sessionID, err)
		}
		return nil, ErrSessionAlreadyClosed
	}

	var session model.Session
	if err := s.db.WithContext(ctx).Preload("Spot").First(&session, sessionID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload session %d: %w", sessionID, err)
	}
	return &session, nil
}

// GetParkingConfig returns the single lot config record, creating it with
// default coordinates on first read.
func (s *gormStore) GetParkingConfig(ctx context.Context) (*model.ParkingConfig, error) {
	var cfg model.ParkingConfig
	err := s.db.WithContext(ctx).Order("id asc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = model.DefaultParkingConfig()
		if err := s.db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, fmt.Errorf("failed to create default parking config: %w", err)
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load parking config: %w", err)
	}
	return &cfg, nil
}

// UpdateParkingConfig updates the existing config record, or creates one if
// the deployment has never been configured.
func (s *gormStore) UpdateParkingConfig(ctx context.Context, cfg *model.ParkingConfig) (*model.ParkingConfig, error) {
	var existing model.ParkingConfig
	err := s.db.WithContext(ctx).Order("id asc").First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(cfg).Error; err != nil {
			return nil, fmt.Errorf("failed to create parking config: %w", err)
		}
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load parking config: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"entrance_lat": cfg.EntranceLat,
		"entrance_lng": cfg.EntranceLng,
		"exit_lat":     cfg.ExitLat,
		"exit_lng":     cfg.ExitLng,
		"shop_lat":     cfg.ShopLat,
		"shop_lng":     cfg.ShopLng,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update parking config: %w", res.Error)
	}
	return &existing, nil
}
