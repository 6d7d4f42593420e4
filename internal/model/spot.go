package model

import "time"

// SpotStatus is the occupancy state of a parking spot.
type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotOccupied  SpotStatus = "occupied"
)

// Spot represents a single physical parking spot.
// Lat/Lng are optional; spots without coordinates are excluded from
// distance-based allocation.
type Spot struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Status    SpotStatus `gorm:"size:16;not null;default:available" json:"status"`
	Lat       *float64   `json:"lat"`
	Lng       *float64   `json:"lng"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// HasCoordinates reports whether the spot carries a geocoordinate pair.
func (s *Spot) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil
}
