package models

import (
	"strings"
	"time"
)

const PlatformWeb = "web"

// DeviceToken is a push registration token a user's browser handed to the
// backend. For web push the token is the JSON-encoded PushSubscription.
type DeviceToken struct {
	Token     string    `gorm:"primaryKey;type:text" json:"token"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupportedPlatform reports whether reminders can be pushed to a token
// registered for platform. Only browser push subscriptions are delivered.
func SupportedPlatform(platform string) bool {
	switch strings.ToLower(platform) {
	case "", PlatformWeb:
		return true
	default:
		return false
	}
}
