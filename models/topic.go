package models

import "time"

// Topic is a discussion thread inside a subsection. It carries the opening
// content itself; replies live in Post.
type Topic struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SubsectionID uint       `gorm:"index;not null" json:"subsection_id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	AuthorID     uint       `gorm:"index;not null" json:"author_id"`
	CuratorID    *uint      `json:"curator_id"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at"`
	Author       User       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Curator      *User      `gorm:"foreignKey:CuratorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"curator,omitempty"`
	Posts        []Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"posts,omitempty"`
}

// CanEdit reports whether the given account may edit or delete this topic:
// admins, staff, the author, and the curator. Anonymous users may not.
func (t *Topic) CanEdit(u *User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() || u.Staff {
		return true
	}
	if u.ID == t.AuthorID {
		return true
	}
	return t.CuratorID != nil && *t.CuratorID == u.ID
}
