package model

import (
	"time"

	"gorm.io/gorm"
)

// Session records an issued access token so logout and auditing can
// reference it. Token validation itself is stateless.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	SessionToken string    `json:"session_token" gorm:"column:session_token;index"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip"`
	Browser      string    `json:"browser" gorm:"column:browser"`
}
