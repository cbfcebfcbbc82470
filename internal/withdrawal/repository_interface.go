package withdrawal

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, w *Withdrawal) error
	GetByID(ctx context.Context, id int64) (*Withdrawal, error)
	GetByIdempotencyKey(ctx context.Context, tutorID int64, key string) (*Withdrawal, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to, rejectReason string) error
	ListByTutor(ctx context.Context, tutorID int64) ([]Withdrawal, error)
	ListPending(ctx context.Context) ([]WithdrawalWithTutor, error)
	CountPending(ctx context.Context) (int64, error)
}
