package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateAccountTx(ctx context.Context, tx *sqlx.Tx, userID, startingGrant int64) (*Account, error)
	GetAccount(ctx context.Context, userID int64) (*Account, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	Debit(ctx context.Context, userID, tokens int64, txType string) (int64, error)
	Credit(ctx context.Context, userID, tokens int64, txType string) (int64, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID, tokens int64, txType string) (int64, error)
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID, tokens int64, txType string) (int64, error)
	GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, error)
	TotalTokens(ctx context.Context) (int64, error)
}
