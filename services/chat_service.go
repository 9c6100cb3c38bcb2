package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

const maxMessageLength = 2000

type ChatService interface {
	SendMessage(ctx context.Context, senderID, recipientID int, body string) (*models.Message, error)
	ListConversations(ctx context.Context, userID int) ([]models.Conversation, error)
	ListMessages(ctx context.Context, actorID, conversationID, beforeID, limit int) ([]models.Message, error)
}

type chatService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	hub         EventBroadcaster
}

func NewChatService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, hub EventBroadcaster) ChatService {
	return &chatService{messageRepo: messageRepo, userRepo: userRepo, hub: hub}
}

// SendMessage находит или создаёт переписку с получателем и доставляет
// сообщение в его комнату по WebSocket.
func (s *chatService) SendMessage(ctx context.Context, senderID, recipientID int, body string) (*models.Message, error) {
	if senderID == recipientID {
		return nil, ErrConversationWithSelf
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrMessageBodyRequired
	}
	if len(body) > maxMessageLength {
		return nil, ErrValidationFailed
	}

	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка проверки получателя: %w", err)
	}

	conv, err := s.messageRepo.GetOrCreateConversation(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения переписки: %w", err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(fmt.Sprintf("user:%d", recipientID), brackets.Event{
			Type:    "MESSAGE_CREATED",
			Payload: msg,
		})
	}
	return msg, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	return s.messageRepo.ListConversationsByUser(ctx, userID)
}

// ListMessages отдаёт страницу сообщений, новые первыми; beforeID — курсор.
// Читать переписку могут только её участники.
func (s *chatService) ListMessages(ctx context.Context, actorID, conversationID, beforeID, limit int) ([]models.Message, error) {
	conv, err := s.messageRepo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("ошибка получения переписки: %w", err)
	}
	if conv.UserAID != actorID && conv.UserBID != actorID {
		return nil, ErrForbiddenOperation
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messageRepo.ListMessages(ctx, conversationID, beforeID, limit)
}
