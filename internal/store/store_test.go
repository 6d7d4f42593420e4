package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_TryReserveSpot(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		wantReserved bool
	}{
		{
			name:         "spot still available, reservation wins",
			rowsAffected: 1,
			wantReserved: true,
		},
		{
			name:         "spot taken by a concurrent caller, reservation loses",
			rowsAffected: 0,
			wantReserved: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "spots" SET`)).
				WithArgs(Any{}, Any{}, int64(7), Any{}).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			mock.ExpectCommit()

			reserved, err := s.TryReserveSpot(context.Background(), 7)
			assert.NoError(t, err)
			assert.Equal(t, tc.wantReserved, reserved)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ReleaseSpot(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "spots" SET`)).
		WithArgs(Any{}, Any{}, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, s.ReleaseSpot(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CloseSession(t *testing.T) {
	now := time.Now()

	t.Run("open session closes", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sessions" SET`)).
			WithArgs(Any{}, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "spot_id", "start_time", "end_time"}).
				AddRow(42, 1, 7, now.Add(-time.Hour), now))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "spots"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).
				AddRow(7, "A1", "occupied"))

		session, err := s.CloseSession(context.Background(), 42, now)
		require.NoError(t, err)
		require.NotNil(t, session.EndTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second close is a conflict", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sessions" SET`)).
			WithArgs(Any{}, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "spot_id", "start_time", "end_time"}).
				AddRow(42, 1, 7, now.Add(-time.Hour), now.Add(-time.Minute)))

		_, err := s.CloseSession(context.Background(), 42, now)
		assert.ErrorIs(t, err, ErrSessionAlreadyClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown session", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sessions" SET`)).
			WithArgs(Any{}, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.CloseSession(context.Background(), 42, now)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_OpenSessionGuardsDoubleParking(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := s.OpenSession(context.Background(), 1, 7, time.Now())
	assert.ErrorIs(t, err, ErrUserAlreadyParked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindOpenSessionNone(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	session, err := s.FindOpenSession(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, session)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetParkingConfigLazyCreate(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "parking_configs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "parking_configs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	cfg, err := s.GetParkingConfig(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 37.7749, cfg.EntranceLat, 1e-9)
	assert.InDelta(t, -122.4194, cfg.EntranceLng, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
