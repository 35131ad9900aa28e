package model

import (
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Role checks compare against
// these constants only, never against ad-hoc string literals.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDietitian Role = "DIYETISYEN"
	RoleClient    Role = "DANISAN"
)

// ParseRole maps a raw string to a Role, reporting whether it is one of
// the known values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleDietitian, RoleClient:
		return Role(s), true
	}
	return "", false
}

// User represents an account of any role. Password and PasswordSalt are
// never serialized to API responses.
type User struct {
	gorm.Model
	Username       string `json:"username" gorm:"column:username;uniqueIndex;not null"`
	Password       string `json:"-" gorm:"column:password;not null"`
	PasswordSalt   string `json:"-" gorm:"column:password_salt"`
	Role           Role   `json:"role" gorm:"column:role;type:varchar(20);default:'DANISAN'"`
	FullName       string `json:"fullName" gorm:"column:full_name;not null"`
	Email          string `json:"email" gorm:"column:email"`
	Phone          string `json:"phone" gorm:"column:phone"`
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}

// PublicUser is the projection returned by user listing endpoints.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Public converts a User into its listing projection.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
		Email:    u.Email,
		Phone:    u.Phone,
	}
}
