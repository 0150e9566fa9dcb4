package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleDentist = "dentist"
	RoleStaff   = "staff"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDentist, RoleStaff:
		return true
	}
	return false
}

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'staff'" json:"role"`
	Email        string `gorm:"size:100;index" json:"email"`
	AvatarURL    string `gorm:"size:255" json:"avatarUrl"`

	// Pending password reset, cleared once used.
	ResetCodeHash      string     `gorm:"size:64" json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`
	ResetCodeAttempts  int        `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
