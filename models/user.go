package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the explicit account role. It replaces name-based group lookups:
// moderation rights derive from the enum, not from membership strings.
type Role string

const (
	RoleRegular   Role = "regular"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User represents a forum account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         Role           `gorm:"size:16;not null;default:'regular'" json:"role"`
	Staff        bool           `gorm:"not null;default:false" json:"staff"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Profile      Profile        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile"`
}

// IsAdmin reports whether the account holds the admin role.
// A nil user (anonymous request) is never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsModerator reports whether the account may issue warnings and bans.
func (u *User) IsModerator() bool {
	return u != nil && (u.Role == RoleModerator || u.Role == RoleAdmin)
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Profile carries per-user forum state. Exactly one profile exists per
// account; it is created together with the account and never on its own.
type Profile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Karma            int       `gorm:"not null;default:0" json:"karma"`
	LastActivity     time.Time `json:"last_activity"`
	TelegramNickname string    `gorm:"size:50" json:"telegram_nickname"`
	PersonalSite     string    `gorm:"size:255" json:"personal_site"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
