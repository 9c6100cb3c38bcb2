package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sportlink/sportlink-backend/brackets"
	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
)

// Размер пачки диспетчера за один проход.
const dispatchBatchSize = 200

type NotificationService interface {
	Schedule(ctx context.Context, userID int, typ models.NotificationType, title, content string, data json.RawMessage, deliverAt time.Time) (*models.Notification, error)
	ListForUser(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, actorID, notificationID int) error
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

type notificationService struct {
	repo   repositories.NotificationRepository
	hub    EventBroadcaster
	logger *slog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, hub EventBroadcaster, logger *slog.Logger) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{repo: repo, hub: hub, logger: logger}
}

// Schedule откладывает уведомление до deliverAt; до этого момента оно не
// видно ни в выдаче, ни диспетчеру.
func (s *notificationService) Schedule(ctx context.Context, userID int, typ models.NotificationType, title, content string, data json.RawMessage, deliverAt time.Time) (*models.Notification, error) {
	n := &models.Notification{
		UserID:           userID,
		Type:             typ,
		Title:            title,
		Content:          content,
		Data:             data,
		NotificationDate: deliverAt,
	}
	if err := s.repo.Create(ctx, nil, n); err != nil {
		return nil, fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return n, nil
}

// ListForUser возвращает наступившие уведомления пользователя, новые первыми.
func (s *notificationService) ListForUser(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error) {
	return s.repo.ListDueByUser(ctx, userID, time.Now(), unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, actorID, notificationID int) error {
	if err := s.repo.MarkRead(ctx, notificationID, actorID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("ошибка отметки уведомления: %w", err)
	}
	return nil
}

// DispatchDue рассылает наступившие уведомления в комнаты подключённых
// пользователей и помечает их dispatched_at, поэтому повторная рассылка
// не случается и после рестарта процесса. Вызывается тикером из cmd/main.go.
func (s *notificationService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDue(ctx, now, dispatchBatchSize)
	if err != nil {
		return 0, fmt.Errorf("ошибка выборки уведомлений: %w", err)
	}

	ids := make([]int, 0, len(due))
	for _, n := range due {
		if s.hub != nil {
			s.hub.BroadcastToRoom(fmt.Sprintf("user:%d", n.UserID), brackets.Event{
				Type:    "NOTIFICATION",
				Payload: n,
			})
		}
		ids = append(ids, n.ID)
	}
	if err := s.repo.MarkDispatched(ctx, ids, now); err != nil {
		return 0, fmt.Errorf("ошибка отметки рассылки: %w", err)
	}

	if len(ids) > 0 {
		s.logger.Debug("notifications dispatched", "count", len(ids))
	}
	return len(ids), nil
}
