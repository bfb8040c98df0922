package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/utils"
)

// MessageService handles private two-party conversations.
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a new MessageService instance.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// GetOrCreateConversation returns the conversation whose participant set is
// exactly the two given users, creating it when none exists. Lookup and
// creation run inside one transaction so concurrent calls for the same pair
// cannot produce duplicates.
func (s *MessageService) GetOrCreateConversation(aID, bID uint) (*models.Conversation, error) {
	if aID == bID {
		return nil, fmt.Errorf("%w: a conversation needs two distinct participants", ErrInvalid)
	}

	var a, b models.User
	if err := s.db.First(&a, aID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, aID)
		}
		return nil, err
	}
	if err := s.db.First(&b, bID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, bID)
		}
		return nil, err
	}

	var conv models.Conversation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var id uint
		// Exactly two rows in the join table, one per requested user.
		row := tx.Raw(`SELECT c.id FROM conversations c
			JOIN conversation_participants p ON p.conversation_id = c.id
			GROUP BY c.id
			HAVING COUNT(*) = 2
			   AND SUM(p.user_id = ?) = 1
			   AND SUM(p.user_id = ?) = 1
			LIMIT 1`, aID, bID).Scan(&id)
		if row.Error != nil {
			return row.Error
		}
		if id != 0 {
			return tx.First(&conv, id).Error
		}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Association("Participants").Append(&a, &b)
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the conversations the user takes part in.
func (s *MessageService) ListConversations(userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id").
		Where("p.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.id").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// PostMessage appends a message to a conversation. Only participants may
// write, content must be non-empty, and messages are never edited or deleted.
func (s *MessageService) PostMessage(conversationID, authorID uint, content string) (*models.Message, error) {
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", ErrInvalid)
	}
	if err := s.conversationExists(conversationID); err != nil {
		return nil, err
	}
	ok, err := s.isParticipant(conversationID, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of this conversation", ErrForbidden)
	}
	msg := models.Message{ConversationID: conversationID, AuthorID: authorID, Content: content}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns a conversation's messages in ascending creation order.
// Only participants may read.
func (s *MessageService) ListMessages(conversationID, requesterID uint) ([]models.Message, error) {
	if err := s.conversationExists(conversationID); err != nil {
		return nil, err
	}
	ok, err := s.isParticipant(conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a participant of this conversation", ErrForbidden)
	}
	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).Preload("Author").
		Order("created_at, id").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageService) conversationExists(id uint) error {
	var count int64
	if err := s.db.Model(&models.Conversation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: conversation %d", ErrNotFound, id)
	}
	return nil
}

func (s *MessageService) isParticipant(conversationID, userID uint) (bool, error) {
	var count int64
	err := s.db.Table("conversation_participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
