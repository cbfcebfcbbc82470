package user

import (
	"context"
	"errors"

	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	ListAdvisors(ctx context.Context, userType, subject string) ([]User, error)
}

type service struct {
	repo              Repository
	jwtSecret         string
	defaultHourlyRate int64
}

func NewService(repo Repository, jwtSecret string, defaultHourlyRate int64) Service {
	return &service{
		repo:              repo,
		jwtSecret:         jwtSecret,
		defaultHourlyRate: defaultHourlyRate,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	hourlyRate := req.HourlyRate
	switch req.UserType {
	case TypeTutor:
		if hourlyRate == 0 {
			hourlyRate = s.defaultHourlyRate
		}
	default:
		// only tutors bill per hour
		hourlyRate = 0
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, req.UserType, hourlyRate, req.Subject, req.Bio)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Email,
		user.UserType,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Email,
		user.UserType,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.UserType, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) ListAdvisors(ctx context.Context, userType, subject string) ([]User, error) {
	return s.repo.ListAdvisors(ctx, userType, subject)
}
