package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, userType string, hourlyRate int64, subject, bio string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListAdvisors(ctx context.Context, userType, subject string) ([]User, error)
	CountByType(ctx context.Context) (map[string]int64, error)
}
