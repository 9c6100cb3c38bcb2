package models

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationMatchSchedule NotificationType = "match_schedule"
)

// Notification — отложенное напоминание. Доставка (push/email) вне ядра:
// клиенты опрашивают GET /notifications, диспетчер лишь рассылает по WebSocket.
type Notification struct {
	ID               int              `json:"id" db:"id"`
	UserID           int              `json:"user_id" db:"user_id"`
	Type             NotificationType `json:"type" db:"type"`
	Title            string           `json:"title" db:"title"`
	Content          string           `json:"content" db:"content"`
	Data             json.RawMessage  `json:"data,omitempty" db:"data"`
	NotificationDate time.Time        `json:"notification_date" db:"notification_date"`
	Read             bool             `json:"read" db:"read"`
	DispatchedAt     *time.Time       `json:"-" db:"dispatched_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}
