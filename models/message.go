package models

import "time"

// Conversation — личная переписка двух пользователей.
// Пара (UserAID, UserBID) хранится упорядоченной: UserAID < UserBID.
type Conversation struct {
	ID        int       `json:"id" db:"id"`
	UserAID   int       `json:"user_a_id" db:"user_a_id"`
	UserBID   int       `json:"user_b_id" db:"user_b_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Message struct {
	ID             int       `json:"id" db:"id"`
	ConversationID int       `json:"conversation_id" db:"conversation_id"`
	SenderID       int       `json:"sender_id" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
