package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pramrakhani/Mentor-Bridge/internal/metrics"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateAccountTx opens the account inside the caller's transaction so the
// account row, the starting grant and the user row commit together.
func (r *repository) CreateAccountTx(ctx context.Context, tx *sqlx.Tx, userID, startingGrant int64) (*Account, error) {
	var a Account
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO token_accounts (user_id, balance)
		 VALUES ($1, 0)
		 RETURNING id, user_id, balance, created_at, updated_at`,
		userID,
	).StructScan(&a)
	if err != nil {
		return nil, err
	}

	if startingGrant > 0 {
		balance, err := r.CreditTx(ctx, tx, userID, startingGrant, TxStartingGrant)
		if err != nil {
			return nil, err
		}
		a.Balance = balance
	}

	return &a, nil
}

func (r *repository) GetAccount(ctx context.Context, userID int64) (*Account, error) {
	a := &Account{}
	err := r.db.GetContext(ctx, a,
		`SELECT id, user_id, balance, created_at, updated_at
		 FROM token_accounts
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	a, err := r.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (r *repository) Debit(ctx context.Context, userID, tokens int64, txType string) (int64, error) {
	if tokens <= 0 {
		return 0, ErrInvalidAmount
	}
	return r.apply(ctx, userID, -tokens, txType)
}

func (r *repository) Credit(ctx context.Context, userID, tokens int64, txType string) (int64, error) {
	if tokens <= 0 {
		return 0, ErrInvalidAmount
	}
	return r.apply(ctx, userID, tokens, txType)
}

func (r *repository) apply(ctx context.Context, userID, amount int64, txType string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	balance, err := r.applyTx(ctx, tx, userID, amount, txType)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if amount < 0 {
		metrics.RecordDebit(txType, -amount)
	} else {
		metrics.RecordCredit(txType, amount)
	}

	return balance, nil
}

func (r *repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID, tokens int64, txType string) (int64, error) {
	if tokens <= 0 {
		return 0, ErrInvalidAmount
	}
	return r.applyTx(ctx, tx, userID, -tokens, txType)
}

func (r *repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID, tokens int64, txType string) (int64, error) {
	if tokens <= 0 {
		return 0, ErrInvalidAmount
	}
	return r.applyTx(ctx, tx, userID, tokens, txType)
}

// applyTx is the single read-modify-write path for balances. The row lock
// taken by FOR UPDATE serializes concurrent mutations of the same account,
// so two debits can never both read the pre-mutation balance. Token-flow
// metrics are recorded by the caller once its transaction commits.
func (r *repository) applyTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, txType string) (int64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	var a Account
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, created_at, updated_at
		 FROM token_accounts
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}

	newBalance := a.Balance + amount
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE token_accounts
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, a.ID,
	)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO token_transactions (account_id, amount, type, balance_after)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, amount, txType, newBalance,
	)
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (r *repository) GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var accountID int64
	err := r.db.GetContext(ctx, &accountID, `SELECT id FROM token_accounts WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT id, account_id, amount, type, balance_after, created_at
		FROM token_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) TotalTokens(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(balance), 0) FROM token_accounts`)
	if err != nil {
		return 0, err
	}
	return total, nil
}
