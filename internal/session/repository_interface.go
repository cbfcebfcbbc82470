package session

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type CreateParams struct {
	StudentID     int64
	MentorID      int64
	Subject       string
	DurationHours float64
	ScheduledAt   time.Time
	Cost          int64
}

type Repository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, params CreateParams) (*Session, error)
	GetByID(ctx context.Context, id int64) (*Session, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to string) error
	ListForUser(ctx context.Context, userID int64) ([]SessionWithNames, error)
	CountSessions(ctx context.Context) (int64, error)
}
