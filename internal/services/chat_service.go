package services

import (
	"context"
	"strings"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/repository"
)

type MessageInput struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

type ChatService struct {
	chat  repository.ChatRepository
	users repository.UserRepository
}

func NewChatService(chat repository.ChatRepository, users repository.UserRepository) *ChatService {
	return &ChatService{chat: chat, users: users}
}

// Conversation returns the messages between the actor and peerID, oldest
// first.
func (s *ChatService) Conversation(ctx context.Context, actor Actor, peerID string) ([]models.ChatMessage, error) {
	if strings.TrimSpace(peerID) == "" {
		return nil, apperrors.Validation("userId is required")
	}
	messages, err := s.chat.Conversation(ctx, actor.ID, peerID)
	if err != nil {
		return nil, internal("Failed to fetch messages", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// Send appends a message from the actor.
func (s *ChatService) Send(ctx context.Context, actor Actor, in MessageInput) (*models.ChatMessage, error) {
	if err := requireFields(in.RecipientID, in.Content); err != nil {
		return nil, err
	}
	ok, err := userExists(ctx, s.users, in.RecipientID)
	if err != nil {
		return nil, internal("Failed to verify recipient", err)
	}
	if !ok {
		return nil, apperrors.NotFound(msgRecipientNotFound)
	}

	msg := &models.ChatMessage{
		SenderID:    actor.ID,
		RecipientID: in.RecipientID,
		Content:     in.Content,
	}
	if err := s.chat.Create(ctx, msg); err != nil {
		return nil, internal("Failed to send message", err)
	}
	logger.Debug("Message sent", map[string]interface{}{
		"messageID":   msg.ID,
		"senderID":    msg.SenderID,
		"recipientID": msg.RecipientID,
	})
	return msg, nil
}

// MarkRead flags everything peerID sent to the actor as read.
func (s *ChatService) MarkRead(ctx context.Context, actor Actor, peerID string) (int64, error) {
	if strings.TrimSpace(peerID) == "" {
		return 0, apperrors.Validation("userId is required")
	}
	n, err := s.chat.MarkRead(ctx, actor.ID, peerID)
	if err != nil {
		return 0, internal("Failed to update messages", err)
	}
	return n, nil
}
