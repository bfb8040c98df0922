package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/utils"
)

// ForumService covers the section/subsection/topic/post hierarchy and the
// permission checks gating writes to it.
type ForumService struct {
	db *gorm.DB
}

// NewForumService creates a new ForumService instance.
func NewForumService(db *gorm.DB) *ForumService {
	return &ForumService{db: db}
}

// ListSections returns all sections in creation order.
func (s *ForumService) ListSections() ([]models.Section, error) {
	var sections []models.Section
	if err := s.db.Order("id").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// ListSubsections returns the subsections of a section.
func (s *ForumService) ListSubsections(sectionID uint) ([]models.Subsection, error) {
	if err := s.mustExist(&models.Section{}, sectionID, "section"); err != nil {
		return nil, err
	}
	var subsections []models.Subsection
	if err := s.db.Where("section_id = ?", sectionID).Order("id").Find(&subsections).Error; err != nil {
		return nil, err
	}
	return subsections, nil
}

// ListTopics returns the topics of a subsection, newest first.
func (s *ForumService) ListTopics(subsectionID uint) ([]models.Topic, error) {
	if err := s.mustExist(&models.Subsection{}, subsectionID, "subsection"); err != nil {
		return nil, err
	}
	var topics []models.Topic
	if err := s.db.Where("subsection_id = ?", subsectionID).Preload("Author").
		Order("created_at DESC, id DESC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// GetTopic loads a topic with its author and curator.
func (s *ForumService) GetTopic(topicID uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.Preload("Author").Preload("Curator").First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, err
	}
	return &topic, nil
}

// ListPosts returns a topic's posts in ascending creation order.
func (s *ForumService) ListPosts(topicID uint) ([]models.Post, error) {
	if err := s.mustExist(&models.Topic{}, topicID, "topic"); err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := s.db.Where("topic_id = ?", topicID).Preload("Author").
		Order("created_at, id").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateSection creates a top level section. Admins only.
func (s *ForumService) CreateSection(actor *models.User, name, description string) (*models.Section, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may create sections", ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: section name cannot be empty", ErrInvalid)
	}
	section := models.Section{Name: name, Description: strings.TrimSpace(description)}
	if err := s.db.Create(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// CreateSubsection creates a subsection under a section. Admins only.
func (s *ForumService) CreateSubsection(actor *models.User, sectionID uint, name, description string) (*models.Subsection, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may create subsections", ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: subsection name cannot be empty", ErrInvalid)
	}
	if err := s.mustExist(&models.Section{}, sectionID, "section"); err != nil {
		return nil, err
	}
	subsection := models.Subsection{SectionID: sectionID, Name: name, Description: strings.TrimSpace(description)}
	if err := s.db.Create(&subsection).Error; err != nil {
		return nil, err
	}
	return &subsection, nil
}

// CreateTopic opens a new topic in a subsection.
func (s *ForumService) CreateTopic(subsectionID, authorID uint, title, content string) (*models.Topic, error) {
	title = utils.Sanitize(strings.TrimSpace(title))
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
	}
	if err := s.mustExist(&models.Subsection{}, subsectionID, "subsection"); err != nil {
		return nil, err
	}
	if err := s.mustExist(&models.User{}, authorID, "user"); err != nil {
		return nil, err
	}
	topic := models.Topic{
		SubsectionID: subsectionID,
		AuthorID:     authorID,
		Title:        title,
		Content:      content,
	}
	if err := s.db.Create(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// EditTopic updates title and content. The permission check runs before any
// mutation; a denial leaves the topic untouched and stamps nothing.
func (s *ForumService) EditTopic(topicID uint, editor *models.User, title, content string) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, err
	}
	if !topic.CanEdit(editor) {
		return nil, fmt.Errorf("%w: not allowed to edit this topic", ErrForbidden)
	}
	title = utils.Sanitize(strings.TrimSpace(title))
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
	}
	now := time.Now()
	topic.Title = title
	topic.Content = content
	topic.EditedAt = &now
	if err := s.db.Save(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// SetCurator assigns or clears a topic's curator. Admins only.
func (s *ForumService) SetCurator(actor *models.User, topicID uint, curatorID *uint) (*models.Topic, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may assign curators", ErrForbidden)
	}
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return nil, err
	}
	if curatorID != nil {
		if err := s.mustExist(&models.User{}, *curatorID, "user"); err != nil {
			return nil, err
		}
	}
	if err := s.db.Model(&topic).Update("curator_id", curatorID).Error; err != nil {
		return nil, err
	}
	topic.CuratorID = curatorID
	return &topic, nil
}

// DeleteTopic removes a topic and all of its posts. Same permission rule as
// editing. The cascade is done explicitly inside one transaction so it does
// not depend on database level foreign key support.
func (s *ForumService) DeleteTopic(topicID uint, actor *models.User) error {
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		return err
	}
	if !topic.CanEdit(actor) {
		return fmt.Errorf("%w: not allowed to delete this topic", ErrForbidden)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", topicID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&topic).Error
	})
}

// CreatePost appends a post to a topic, optionally as a reply to a parent
// post. The parent must exist and belong to the same topic; a post can never
// reference itself or a post from elsewhere.
func (s *ForumService) CreatePost(topicID, authorID uint, content string, parentPostID *uint) (*models.Post, error) {
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
	}
	if err := s.mustExist(&models.Topic{}, topicID, "topic"); err != nil {
		return nil, err
	}
	if err := s.mustExist(&models.User{}, authorID, "user"); err != nil {
		return nil, err
	}
	if parentPostID != nil {
		var parent models.Post
		if err := s.db.First(&parent, *parentPostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent post %d", ErrNotFound, *parentPostID)
			}
			return nil, err
		}
		if parent.TopicID != topicID {
			return nil, fmt.Errorf("%w: parent post belongs to another topic", ErrInvalid)
		}
	}
	post := models.Post{
		TopicID:      topicID,
		AuthorID:     authorID,
		Content:      content,
		ParentPostID: parentPostID,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post. Author or admin only. Replies to the deleted
// post lose their parent reference but stay in the topic.
func (s *ForumService) DeletePost(postID uint, actor *models.User) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return err
	}
	if actor == nil || (post.AuthorID != actor.ID && !actor.IsAdmin()) {
		return fmt.Errorf("%w: not allowed to delete this post", ErrForbidden)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("parent_post_id = ?", postID).
			Update("parent_post_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func (s *ForumService) mustExist(model interface{}, id uint, kind string) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	return nil
}
