package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarboard/cedar/models"
)

func TestGetOrCreateConversationIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(db)

	a := newUser(t, db, "a", models.RoleRegular, false)
	b := newUser(t, db, "b", models.RoleRegular, false)

	conv, err := svc.GetOrCreateConversation(a.ID, b.ID)
	require.NoError(t, err)
	require.NotZero(t, conv.ID)

	// Same pair in either order resolves to the same conversation.
	again, err := svc.GetOrCreateConversation(b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)

	var convCount int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&convCount).Error)
	assert.EqualValues(t, 1, convCount)

	var participants []uint
	require.NoError(t, db.Table("conversation_participants").
		Where("conversation_id = ?", conv.ID).
		Order("user_id").Pluck("user_id", &participants).Error)
	assert.Equal(t, []uint{a.ID, b.ID}, participants)
}

func TestGetOrCreateConversationDistinctPairs(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(db)

	a := newUser(t, db, "a", models.RoleRegular, false)
	b := newUser(t, db, "b", models.RoleRegular, false)
	c := newUser(t, db, "c", models.RoleRegular, false)

	ab, err := svc.GetOrCreateConversation(a.ID, b.ID)
	require.NoError(t, err)
	ac, err := svc.GetOrCreateConversation(a.ID, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ab.ID, ac.ID, "different pairs get different conversations")

	convs, err := svc.ListConversations(a.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	convs, err = svc.ListConversations(c.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, ac.ID, convs[0].ID)
}

func TestGetOrCreateConversationRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(db)

	a := newUser(t, db, "a", models.RoleRegular, false)

	_, err := svc.GetOrCreateConversation(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.GetOrCreateConversation(a.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostMessageParticipantsOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(db)

	a := newUser(t, db, "a", models.RoleRegular, false)
	b := newUser(t, db, "b", models.RoleRegular, false)
	outsider := newUser(t, db, "outsider", models.RoleRegular, false)

	conv, err := svc.GetOrCreateConversation(a.ID, b.ID)
	require.NoError(t, err)

	_, err = svc.PostMessage(conv.ID, outsider.ID, "let me in")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListMessages(conv.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.PostMessage(conv.ID, a.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.PostMessage(9999, a.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMessagesAscendingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(db)

	a := newUser(t, db, "a", models.RoleRegular, false)
	b := newUser(t, db, "b", models.RoleRegular, false)

	conv, err := svc.GetOrCreateConversation(a.ID, b.ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		author := a.ID
		if i%2 == 1 {
			author = b.ID
		}
		_, err := svc.PostMessage(conv.ID, author, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	messages, err := svc.ListMessages(conv.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
	assert.Equal(t, "a", messages[0].Author.Username)
}
