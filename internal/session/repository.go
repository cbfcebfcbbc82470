package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStatusConflict  = errors.New("session is not in the expected status")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, params CreateParams) (*Session, error) {
	query := `
		INSERT INTO sessions (student_id, mentor_id, subject, duration_hours, scheduled_at, status, cost)
		VALUES ($1, $2, $3, $4, $5, 'upcoming', $6)
		RETURNING id, student_id, mentor_id, subject, duration_hours, scheduled_at, status, cost, created_at
	`

	var s Session
	err := tx.QueryRowxContext(ctx, query,
		params.StudentID,
		params.MentorID,
		params.Subject,
		params.DurationHours,
		params.ScheduledAt,
		params.Cost,
	).StructScan(&s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Session, error) {
	query := `
		SELECT id, student_id, mentor_id, subject, duration_hours, scheduled_at, status, cost, created_at
		FROM sessions
		WHERE id = $1
	`

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// UpdateStatusTx moves a session between statuses. The WHERE clause on the
// current status makes the transition a conditional write, so a concurrent
// transition loses with ErrStatusConflict instead of double-applying.
func (r *repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
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

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]SessionWithNames, error) {
	query := `
		SELECT
			s.id,
			s.student_id,
			s.mentor_id,
			s.subject,
			s.duration_hours,
			s.scheduled_at,
			s.status,
			s.cost,
			s.created_at,
			st.name AS student_name,
			m.name AS mentor_name
		FROM sessions s
		JOIN users st ON s.student_id = st.id
		JOIN users m ON s.mentor_id = m.id
		WHERE s.student_id = $1 OR s.mentor_id = $1
		ORDER BY s.scheduled_at DESC
	`

	var sessions []SessionWithNames
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`); err != nil {
		return 0, err
	}
	return count, nil
}
