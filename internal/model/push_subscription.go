package model

import "time"

// PushSubscription holds the information for a browser push subscription,
// used to deliver departure receipts.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	UserID    int64     `gorm:"index;not null" json:"userId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
