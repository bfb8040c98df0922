package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

// MessageController exposes private two-party conversations.
type MessageController struct {
	messages *services.MessageService
}

// NewMessageController creates a new MessageController instance.
func NewMessageController(db *gorm.DB) *MessageController {
	return &MessageController{messages: services.NewMessageService(db)}
}

// StartConversation finds or creates the conversation between the caller and
// another user and returns it.
func (m *MessageController) StartConversation(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "unauthorized")
		return
	}
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	conv, err := m.messages.GetOrCreateConversation(userID, req.UserID)
	if err != nil {
		failService(ctx, err, 50060, "failed to start conversation")
		return
	}
	utils.Success(ctx, gin.H{"conversation": conv})
}

// ListConversations returns the caller's conversations.
func (m *MessageController) ListConversations(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40161, "unauthorized")
		return
	}
	conversations, err := m.messages.ListConversations(userID)
	if err != nil {
		failService(ctx, err, 50061, "failed to list conversations")
		return
	}
	utils.Success(ctx, gin.H{"conversations": conversations})
}

// ListMessages returns a conversation's messages in creation order.
func (m *MessageController) ListMessages(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40162, "unauthorized")
		return
	}
	convID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid conversation id")
		return
	}
	messages, err := m.messages.ListMessages(convID, userID)
	if err != nil {
		failService(ctx, err, 50062, "failed to list messages")
		return
	}
	utils.Success(ctx, gin.H{"messages": messages})
}

// PostMessage appends a message to a conversation.
func (m *MessageController) PostMessage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40163, "unauthorized")
		return
	}
	convID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid conversation id")
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid request payload")
		return
	}
	msg, err := m.messages.PostMessage(convID, userID, req.Content)
	if err != nil {
		failService(ctx, err, 50063, "failed to post message")
		return
	}
	utils.Success(ctx, gin.H{"message": msg})
}
