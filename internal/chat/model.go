package chat

import "time"

// Conversation links two users. The pair is stored ordered (UserA < UserB)
// so one row exists per pair regardless of who started it.
type Conversation struct {
	ID            int64     `db:"id" json:"id"`
	UserA         int64     `db:"user_a" json:"user_a"`
	UserB         int64     `db:"user_b" json:"user_b"`
	LastMessage   string    `db:"last_message" json:"last_message"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type ConversationWithPeer struct {
	Conversation
	PeerID   int64  `db:"peer_id" json:"peer_id"`
	PeerName string `db:"peer_name" json:"peer_name"`
}

type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	Body           string    `db:"body" json:"body"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}
