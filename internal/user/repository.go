package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pramrakhani/Mentor-Bridge/internal/db"
	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
	"github.com/pramrakhani/Mentor-Bridge/internal/metrics"
)

var ErrUserNotFound = errors.New("user not found")

type repository struct {
	db            *sqlx.DB
	ledgerRepo    ledger.Repository
	startingGrant int64
}

func NewRepository(db *sqlx.DB, ledgerRepo ledger.Repository, startingGrant int64) Repository {
	return &repository{
		db:            db,
		ledgerRepo:    ledgerRepo,
		startingGrant: startingGrant,
	}
}

// Create inserts the user and opens their token account with the starting
// grant in one transaction, so there is never a user without an account.
func (r *repository) Create(ctx context.Context, name, email, passwordHash, userType string, hourlyRate int64, subject, bio string) (*User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (name, email, password_hash, user_type, hourly_rate, subject, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, password_hash, user_type, hourly_rate, subject, bio, created_at
	`

	var u User
	err = tx.QueryRowxContext(ctx, query, name, email, passwordHash, userType, hourlyRate, subject, bio).StructScan(&u)
	if err != nil {
		return nil, err
	}

	if _, err := r.ledgerRepo.CreateAccountTx(ctx, tx, u.ID, r.startingGrant); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if r.startingGrant > 0 {
		metrics.RecordCredit(ledger.TxStartingGrant, r.startingGrant)
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, user_type, hourly_rate, subject, bio, created_at
		FROM users
		WHERE email = $1
	`

	var u User
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, user_type, hourly_rate, subject, bio, created_at
		FROM users
		WHERE id = $1
	`

	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// ListAdvisors returns mentors and tutors for the directory, optionally
// filtered by user type and subject.
func (r *repository) ListAdvisors(ctx context.Context, userType, subject string) ([]User, error) {
	query := `
		SELECT id, name, email, password_hash, user_type, hourly_rate, subject, bio, created_at
		FROM users
		WHERE user_type IN ('mentor', 'tutor')
		  AND ($1 = '' OR user_type = $1)
		  AND ($2 = '' OR subject ILIKE '%' || $2 || '%')
		ORDER BY name
	`

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, userType, subject); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) CountByType(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT user_type, COUNT(*) FROM users GROUP BY user_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var userType string
		var count int64
		if err := rows.Scan(&userType, &count); err != nil {
			return nil, err
		}
		counts[userType] = count
	}

	return counts, rows.Err()
}
