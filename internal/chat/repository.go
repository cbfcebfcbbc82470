package chat

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrConversationNotFound = errors.New("conversation not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// EnsureConversationTx creates the conversation for the pair if it does not
// exist yet. ON CONFLICT keeps it idempotent under concurrent bookings.
func (r *repository) EnsureConversationTx(ctx context.Context, tx *sqlx.Tx, userID, peerID int64, preview string) (*Conversation, error) {
	userA, userB := orderPair(userID, peerID)

	var conv Conversation
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO conversations (user_a, user_b, last_message, last_message_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_a, user_b) DO UPDATE
		 SET last_message = EXCLUDED.last_message, last_message_at = NOW()
		 RETURNING id, user_a, user_b, last_message, last_message_at, created_at`,
		userA, userB, preview,
	).StructScan(&conv)
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

func (r *repository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT id, user_a, user_b, last_message, last_message_at, created_at
		 FROM conversations
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, ErrConversationNotFound
	}
	return &conv, nil
}

func (r *repository) ListConversations(ctx context.Context, userID int64) ([]ConversationWithPeer, error) {
	query := `
		SELECT
			c.id,
			c.user_a,
			c.user_b,
			c.last_message,
			c.last_message_at,
			c.created_at,
			u.id AS peer_id,
			u.name AS peer_name
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user_a = $1 THEN c.user_b ELSE c.user_a END
		WHERE c.user_a = $1 OR c.user_b = $1
		ORDER BY c.last_message_at DESC
	`

	var convs []ConversationWithPeer
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, err
	}

	return convs, nil
}

// AddMessage inserts the message and bumps the conversation preview in one
// transaction.
func (r *repository) AddMessage(ctx context.Context, conversationID, senderID int64, body string) (*Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var msg Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, conversation_id, sender_id, body, created_at`,
		conversationID, senderID, body,
	).StructScan(&msg)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations
		 SET last_message = $1, last_message_at = NOW()
		 WHERE id = $2`,
		body, conversationID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (r *repository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}

	var msgs []Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}

	return msgs, nil
}
