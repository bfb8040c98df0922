package models

import "time"

// Post is a reply inside a topic. ParentPostID links a reply to the post it
// answers; deleting the parent nulls the link instead of cascading, so reply
// chains survive the removal of an intermediate post.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TopicID      uint      `gorm:"index;not null" json:"topic_id"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	ParentPostID *uint     `gorm:"index" json:"parent_post_id"`
	CreatedAt    time.Time `json:"created_at"`
	Author       User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
