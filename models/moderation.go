package models

import "time"

// Warn is an append-only moderation note against a user. It is never edited
// or removed once written.
type Warn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	ModeratorID uint      `gorm:"index;not null" json:"moderator_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
	Moderator   User      `gorm:"foreignKey:ModeratorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"moderator"`
}

// Ban is a time-bounded moderation record. IsActive is the only field that
// ever changes after creation; nothing flips it automatically when EndDate
// passes, so readers must check the clock too (see ActiveAt).
type Ban struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	ModeratorID uint      `gorm:"index;not null" json:"moderator_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Moderator   User      `gorm:"foreignKey:ModeratorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"moderator"`
}

// ActiveAt reports whether the ban restricts the user at the given instant.
func (b *Ban) ActiveAt(t time.Time) bool {
	return b.IsActive && t.Before(b.EndDate)
}
