package withdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrStatusConflict     = errors.New("withdrawal is not in the expected status")
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint
// error, used to detect concurrent idempotency-key replays.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, w *Withdrawal) error {
	query := `
		INSERT INTO withdrawals
			(tutor_id, tokens, gross_amount, commission, net_amount,
			 payout_method, payout_details, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING id, status, created_at
	`

	return tx.QueryRowxContext(ctx, query,
		w.TutorID,
		w.Tokens,
		w.GrossAmount,
		w.Commission,
		w.NetAmount,
		w.PayoutMethod,
		w.PayoutDetails,
		w.IdempotencyKey,
	).Scan(&w.ID, &w.Status, &w.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Withdrawal, error) {
	var w Withdrawal
	err := r.db.GetContext(ctx, &w, `
		SELECT id, tutor_id, tokens, gross_amount, commission, net_amount,
		       payout_method, payout_details, status, reject_reason,
		       idempotency_key, created_at, processed_at
		FROM withdrawals
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}

	return &w, nil
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, tutorID int64, key string) (*Withdrawal, error) {
	var w Withdrawal
	err := r.db.GetContext(ctx, &w, `
		SELECT id, tutor_id, tokens, gross_amount, commission, net_amount,
		       payout_method, payout_details, status, reject_reason,
		       idempotency_key, created_at, processed_at
		FROM withdrawals
		WHERE tutor_id = $1 AND idempotency_key = $2
	`, tutorID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &w, nil
}

// UpdateStatusTx transitions a withdrawal and stamps processed_at. The
// conditional WHERE makes re-approving an already processed request fail
// with ErrStatusConflict.
func (r *repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to, rejectReason string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, reject_reason = $2, processed_at = NOW()
		WHERE id = $3 AND status = $4
	`, to, rejectReason, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

func (r *repository) ListByTutor(ctx context.Context, tutorID int64) ([]Withdrawal, error) {
	var ws []Withdrawal
	err := r.db.SelectContext(ctx, &ws, `
		SELECT id, tutor_id, tokens, gross_amount, commission, net_amount,
		       payout_method, payout_details, status, reject_reason,
		       idempotency_key, created_at, processed_at
		FROM withdrawals
		WHERE tutor_id = $1
		ORDER BY created_at DESC
	`, tutorID)
	if err != nil {
		return nil, err
	}

	return ws, nil
}

func (r *repository) ListPending(ctx context.Context) ([]WithdrawalWithTutor, error) {
	var ws []WithdrawalWithTutor
	err := r.db.SelectContext(ctx, &ws, `
		SELECT w.id, w.tutor_id, w.tokens, w.gross_amount, w.commission, w.net_amount,
		       w.payout_method, w.payout_details, w.status, w.reject_reason,
		       w.idempotency_key, w.created_at, w.processed_at,
		       u.name AS tutor_name
		FROM withdrawals w
		JOIN users u ON w.tutor_id = u.id
		WHERE w.status = 'pending'
		ORDER BY w.created_at
	`)
	if err != nil {
		return nil, err
	}

	return ws, nil
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'`)
	if err != nil {
		return 0, err
	}
	return count, nil
}
