package model

import "time"

// Session represents one vehicle's continuous occupancy of one spot.
// EndTime is nil while the session is open; it is set exactly once at exit.
type Session struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"index;not null" json:"userId"`
	SpotID    int64      `gorm:"index;not null" json:"spotId"`
	StartTime time.Time  `gorm:"not null" json:"startTime"`
	EndTime   *time.Time `gorm:"index" json:"endTime"`

	// Associations
	Spot Spot `gorm:"constraint:OnDelete:CASCADE" json:"spot"`
}

// Open reports whether the session has not been closed yet.
func (s *Session) Open() bool {
	return s.EndTime == nil
}
