package chat

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	EnsureConversationTx(ctx context.Context, tx *sqlx.Tx, userID, peerID int64, preview string) (*Conversation, error)
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]ConversationWithPeer, error)
	AddMessage(ctx context.Context, conversationID, senderID int64, body string) (*Message, error)
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]Message, error)
}
