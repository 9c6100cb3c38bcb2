package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sportlink/sportlink-backend/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, n *models.Notification) error
	ListDueByUser(ctx context.Context, userID int, now time.Time, unreadOnly bool) ([]*models.Notification, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkDispatched(ctx context.Context, ids []int, at time.Time) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNotificationRepository) Create(ctx context.Context, exec SQLExecutor, n *models.Notification) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO notifications (user_id, type, title, content, data, notification_date, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		n.UserID, n.Type, n.Title, n.Content, nullableJSON(n.Data), n.NotificationDate, n.Read,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

const notificationColumns = `id, user_id, type, title, content, data, notification_date, read, dispatched_at, created_at`

// ListDueByUser возвращает уведомления пользователя, чья дата доставки наступила.
func (r *postgresNotificationRepository) ListDueByUser(ctx context.Context, userID int, now time.Time, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND notification_date <= $2`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY notification_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// ListDue возвращает наступившие ещё не разосланные уведомления всех
// пользователей (для фоновой рассылки по WebSocket).
func (r *postgresNotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE notification_date <= $1 AND read = FALSE AND dispatched_at IS NULL
		ORDER BY notification_date ASC, id ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

// MarkDispatched помечает уведомления как разосланные, чтобы после рестарта
// диспетчер не рассылал их повторно.
func (r *postgresNotificationRepository) MarkDispatched(ctx context.Context, ids []int, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET dispatched_at = $1 WHERE id = ANY($2)`, at, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark notifications dispatched: %w", err)
	}
	return nil
}

func collectNotifications(rows *sql.Rows) ([]*models.Notification, error) {
	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Content, &data, &n.NotificationDate, &n.Read, &n.DispatchedAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		n.Data = data
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return data
}
