package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sportlink/sportlink-backend/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type MessageRepository interface {
	GetOrCreateConversation(ctx context.Context, userAID, userBID int) (*models.Conversation, error)
	GetConversation(ctx context.Context, id int) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID int) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID int, beforeID int, limit int) ([]models.Message, error)
}

type postgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

// GetOrCreateConversation нормализует пару (a < b) и возвращает существующую
// переписку либо создаёт новую. ON CONFLICT закрывает гонку двух первых сообщений.
func (r *postgresMessageRepository) GetOrCreateConversation(ctx context.Context, userAID, userBID int) (*models.Conversation, error) {
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	conv := &models.Conversation{UserAID: userAID, UserBID: userBID}
	query := `
		INSERT INTO conversations (user_a_id, user_b_id)
		VALUES ($1, $2)
		ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET user_a_id = EXCLUDED.user_a_id
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, userAID, userBID).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return conv, nil
}

func (r *postgresMessageRepository) GetConversation(ctx context.Context, id int) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_a_id, user_b_id, created_at FROM conversations WHERE id = $1`, id).
		Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

func (r *postgresMessageRepository) ListConversationsByUser(ctx context.Context, userID int) ([]models.Conversation, error) {
	query := `
		SELECT id, user_a_id, user_b_id, created_at
		FROM conversations
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *postgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, msg.ConversationID, msg.SenderID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListMessages постранично отдаёт сообщения: beforeID == 0 — первая страница,
// иначе сообщения старше указанного id. Новые первыми.
func (r *postgresMessageRepository) ListMessages(ctx context.Context, conversationID int, beforeID int, limit int) ([]models.Message, error) {
	var rows *sql.Rows
	var err error

	if beforeID > 0 {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, conversation_id, sender_id, body, created_at
			FROM messages
			WHERE conversation_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`, conversationID, beforeID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, conversation_id, sender_id, body, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY id DESC
			LIMIT $2`, conversationID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
