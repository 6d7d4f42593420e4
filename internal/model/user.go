package model

import "time"

// PreferenceType classifies a user's stored placement preference.
type PreferenceType string

const (
	PreferenceNone     PreferenceType = ""
	PreferenceSpecific PreferenceType = "specific"
	PreferenceEntrance PreferenceType = "entrance"
	PreferenceExit     PreferenceType = "exit"
	PreferenceShop     PreferenceType = "shop"
)

// User holds the account fields the allocation core needs: the scan token
// and the placement preference. Credential management lives elsewhere.
type User struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;size:256;not null" json:"email"`
	ScanToken      string         `gorm:"uniqueIndex;size:64" json:"-"`
	PreferenceType PreferenceType `gorm:"size:16" json:"spotPreferenceType"`
	PreferredSpot  string         `gorm:"size:32" json:"preferredSpot"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Associations
	Sessions []Session `gorm:"foreignKey:UserID"`
}
