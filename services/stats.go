package services

import (
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
)

// TopicCount pairs an entity with the number of topics it holds.
type TopicCount struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	TopicCount int64  `json:"topic_count"`
}

// ForumStats aggregates board-wide counters for the stats page.
type ForumStats struct {
	SectionCount       int64        `json:"section_count"`
	SubsectionCount    int64        `json:"subsection_count"`
	TopicCount         int64        `json:"topic_count"`
	PostCount          int64        `json:"post_count"`
	TopicsBySection    []TopicCount `json:"topics_by_section"`
	TopicsBySubsection []TopicCount `json:"topics_by_subsection"`
}

// StatsService computes forum-wide statistics.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// ComputeForumStats counts sections, subsections, topics and posts, plus
// per-section and per-subsection topic counts.
func (s *StatsService) ComputeForumStats() (*ForumStats, error) {
	stats := &ForumStats{}

	if err := s.db.Model(&models.Section{}).Count(&stats.SectionCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Subsection{}).Count(&stats.SubsectionCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Topic{}).Count(&stats.TopicCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Post{}).Count(&stats.PostCount).Error; err != nil {
		return nil, err
	}

	err := s.db.Raw(`SELECT s.id, s.name, COUNT(t.id) AS topic_count
		FROM sections s
		LEFT JOIN subsections ss ON ss.section_id = s.id
		LEFT JOIN topics t ON t.subsection_id = ss.id
		GROUP BY s.id, s.name
		ORDER BY s.id`).Scan(&stats.TopicsBySection).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Raw(`SELECT ss.id, ss.name, COUNT(t.id) AS topic_count
		FROM subsections ss
		LEFT JOIN topics t ON t.subsection_id = ss.id
		GROUP BY ss.id, ss.name
		ORDER BY ss.id`).Scan(&stats.TopicsBySubsection).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
