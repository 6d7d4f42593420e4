package model

import "time"

// ParkingConfig holds the lot's three reference coordinates. Exactly one
// record exists per deployment; it is created lazily with defaults on
// first read.
type ParkingConfig struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	EntranceLat float64   `gorm:"not null" json:"entranceLat"`
	EntranceLng float64   `gorm:"not null" json:"entranceLng"`
	ExitLat     float64   `gorm:"not null" json:"exitLat"`
	ExitLng     float64   `gorm:"not null" json:"exitLng"`
	ShopLat     float64   `gorm:"not null" json:"shopLat"`
	ShopLng     float64   `gorm:"not null" json:"shopLng"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultParkingConfig returns the coordinates used when no config record
// exists yet.
func DefaultParkingConfig() ParkingConfig {
	return ParkingConfig{
		EntranceLat: 37.7749,
		EntranceLng: -122.4194,
		ExitLat:     37.7750,
		ExitLng:     -122.4195,
		ShopLat:     37.7751,
		ShopLng:     -122.4196,
	}
}
