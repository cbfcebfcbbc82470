package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Create(ctx context.Context, name, email, passwordHash, userType string, hourlyRate int64, subject, bio string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, userType, hourlyRate, subject, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) ListAdvisors(ctx context.Context, userType, subject string) ([]User, error) {
	args := m.Called(ctx, userType, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepo) CountByType(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

const testSecret = "test-secret"

func registerRequest(userType string, hourlyRate int64) RegisterRequest {
	return RegisterRequest{
		Name:       "Test User",
		Email:      "test@example.com",
		Password:   "password123",
		UserType:   userType,
		HourlyRate: hourlyRate,
	}
}

func TestRegister_Student(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "test@example.com").Return(false, nil)
	repo.On("Create", ctx, "Test User", "test@example.com", mock.Anything, TypeStudent, int64(0), "", "").
		Return(&User{ID: 1, Email: "test@example.com", UserType: TypeStudent}, nil)

	u, access, refresh, err := svc.Register(ctx, registerRequest(TypeStudent, 0))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ValidateToken(access, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestRegister_TutorGetsDefaultRate(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "test@example.com").Return(false, nil)
	repo.On("Create", ctx, "Test User", "test@example.com", mock.Anything, TypeTutor, int64(15), "", "").
		Return(&User{ID: 2, UserType: TypeTutor, HourlyRate: 15}, nil)

	_, _, _, err := svc.Register(ctx, registerRequest(TypeTutor, 0))
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegister_NonTutorRateForcedToZero(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "test@example.com").Return(false, nil)
	repo.On("Create", ctx, "Test User", "test@example.com", mock.Anything, TypeMentor, int64(0), "", "").
		Return(&User{ID: 3, UserType: TypeMentor}, nil)

	_, _, _, err := svc.Register(ctx, registerRequest(TypeMentor, 25))
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegister_EmailExists(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "test@example.com").Return(true, nil)

	_, _, _, err := svc.Register(ctx, registerRequest(TypeStudent, 0))
	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	assert.NoError(t, err)

	repo.On("FindByEmail", ctx, "test@example.com").
		Return(&User{ID: 1, Email: "test@example.com", PasswordHash: hash, UserType: TypeStudent}, nil)

	u, access, refresh, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "password123"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	hash, _ := auth.HashPassword("password123")
	repo.On("FindByEmail", ctx, "test@example.com").
		Return(&User{ID: 1, PasswordHash: hash}, nil)

	_, _, _, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, ErrUserNotFound)

	_, _, _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	refreshToken, err := auth.GenerateRefreshToken(7, "tutor@example.com", TypeTutor, testSecret)
	assert.NoError(t, err)

	repo.On("FindByID", ctx, int64(7)).
		Return(&User{ID: 7, Email: "tutor@example.com", UserType: TypeTutor}, nil)

	newAccess, u, err := svc.RefreshToken(ctx, refreshToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)

	claims, err := auth.ValidateToken(newAccess, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testSecret, 15)
	ctx := context.Background()

	accessToken, err := auth.GenerateAccessToken(7, "tutor@example.com", TypeTutor, testSecret)
	assert.NoError(t, err)

	_, _, err = svc.RefreshToken(ctx, accessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidTokenType)
}
