package models

import "time"

// Section is a top level grouping of the board.
type Section struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	Subsections []Subsection `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subsections,omitempty"`
}

// Subsection groups topics under a section.
type Subsection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SectionID   uint      `gorm:"index;not null" json:"section_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Topics      []Topic   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"topics,omitempty"`
}
