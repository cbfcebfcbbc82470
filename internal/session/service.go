package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pramrakhani/Mentor-Bridge/internal/chat"
	"github.com/pramrakhani/Mentor-Bridge/internal/config"
	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
	"github.com/pramrakhani/Mentor-Bridge/internal/logger"
	"github.com/pramrakhani/Mentor-Bridge/internal/metrics"
	"github.com/pramrakhani/Mentor-Bridge/internal/notification"
	"github.com/pramrakhani/Mentor-Bridge/internal/user"
)

var (
	ErrMentorNotFound     = errors.New("mentor not found")
	ErrNotAnAdvisor       = errors.New("user is not a mentor or tutor")
	ErrSelfBooking        = errors.New("cannot book a session with yourself")
	ErrScheduledInPast    = errors.New("cannot book a session in the past")
	ErrInvalidDuration    = errors.New("duration must be positive")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrNotParticipant     = errors.New("not a participant of this session")
	ErrInvalidTransition  = errors.New("invalid session status transition")
)

// InsufficientTokensError carries the need/have amounts so the presentation
// layer can render an actionable message. errors.Is matches
// ErrInsufficientTokens.
type InsufficientTokensError struct {
	Need int64
	Have int64
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: need %d, have %d", e.Need, e.Have)
}

func (e *InsufficientTokensError) Is(target error) bool {
	return target == ErrInsufficientTokens
}

type Service interface {
	Book(ctx context.Context, studentID int64, req BookRequest) (*Session, int64, error)
	Complete(ctx context.Context, userID, sessionID int64) error
	Cancel(ctx context.Context, userID, sessionID int64) error
	ListForUser(ctx context.Context, userID int64) ([]SessionWithNames, error)
}

type service struct {
	db         *sqlx.DB
	repo       Repository
	userRepo   user.Repository
	ledgerRepo ledger.Repository
	chatRepo   chat.Repository
	notifier   *notification.Service
	economy    config.Economy
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	chatRepo chat.Repository,
	notifier *notification.Service,
	economy config.Economy,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		chatRepo:   chatRepo,
		notifier:   notifier,
		economy:    economy,
	}
}

// Cost computes the token price of a session: free for mentors, otherwise
// hourly rate times duration rounded half-up to whole tokens.
func Cost(mentor *user.User, durationHours float64, defaultHourlyRate int64) int64 {
	if mentor.UserType != user.TypeTutor {
		return 0
	}

	rate := mentor.HourlyRate
	if rate == 0 {
		rate = defaultHourlyRate
	}

	cost := decimal.NewFromInt(rate).Mul(decimal.NewFromFloat(durationHours))
	return cost.Round(0).IntPart()
}

func (s *service) Book(ctx context.Context, studentID int64, req BookRequest) (*Session, int64, error) {
	if req.DurationHours <= 0 {
		return nil, 0, ErrInvalidDuration
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid scheduled_at: %w", err)
	}

	if scheduledAt.Before(time.Now()) {
		return nil, 0, ErrScheduledInPast
	}

	// conversations key on an ordered (a, b) pair with a < b
	if studentID == req.MentorID {
		return nil, 0, ErrSelfBooking
	}

	mentor, err := s.userRepo.FindByID(ctx, req.MentorID)
	if err != nil {
		return nil, 0, ErrMentorNotFound
	}

	if mentor.UserType != user.TypeMentor && mentor.UserType != user.TypeTutor {
		return nil, 0, ErrNotAnAdvisor
	}

	subject := req.Subject
	if subject == "" {
		subject = "General"
	}

	cost := Cost(mentor, req.DurationHours, s.economy.DefaultHourlyRate)

	// Fail fast with need/have before opening the transaction. The debit
	// below re-checks under the row lock, so this is advisory only.
	balance, err := s.ledgerRepo.GetBalance(ctx, studentID)
	if err != nil {
		return nil, 0, err
	}
	if cost > balance {
		return nil, 0, &InsufficientTokensError{Need: cost, Have: balance}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	created, err := s.repo.CreateTx(ctx, tx, CreateParams{
		StudentID:     studentID,
		MentorID:      mentor.ID,
		Subject:       subject,
		DurationHours: req.DurationHours,
		ScheduledAt:   scheduledAt,
		Cost:          cost,
	})
	if err != nil {
		return nil, 0, err
	}

	remaining := balance
	if cost > 0 {
		remaining, err = s.ledgerRepo.DebitTx(ctx, tx, studentID, cost, ledger.TxSessionPayment)
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				return nil, 0, &InsufficientTokensError{Need: cost, Have: balance}
			}
			return nil, 0, err
		}
	}

	preview := fmt.Sprintf("Session booked for %s", scheduledAt.Format("Jan 2, 3:04 PM"))
	if _, err := s.chatRepo.EnsureConversationTx(ctx, tx, studentID, mentor.ID, preview); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	tier := "free"
	if cost > 0 {
		tier = "paid"
		metrics.RecordDebit(ledger.TxSessionPayment, cost)
	}
	metrics.RecordSessionBooked(tier)

	if s.notifier != nil {
		student, err := s.userRepo.FindByID(ctx, studentID)
		if err == nil {
			if err := s.notifier.SendSessionBooked(ctx, student.Email, student.Name, mentor.Name, subject, scheduledAt, cost); err != nil {
				logger.Errorf("Failed to queue booking confirmation: %v", err)
			}
		}
	}

	return created, remaining, nil
}

func (s *service) Complete(ctx context.Context, userID, sessionID int64) error {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess.StudentID != userID && sess.MentorID != userID {
		return ErrNotParticipant
	}

	if sess.Status != StatusUpcoming {
		return ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateStatusTx(ctx, tx, sessionID, StatusUpcoming, StatusCompleted); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return ErrInvalidTransition
		}
		return err
	}

	return tx.Commit()
}

// Cancel moves an upcoming session to cancelled and refunds its cost to the
// student in the same transaction.
func (s *service) Cancel(ctx context.Context, userID, sessionID int64) error {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess.StudentID != userID && sess.MentorID != userID {
		return ErrNotParticipant
	}

	if sess.Status != StatusUpcoming {
		return ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateStatusTx(ctx, tx, sessionID, StatusUpcoming, StatusCancelled); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return ErrInvalidTransition
		}
		return err
	}

	if sess.Cost > 0 {
		if _, err := s.ledgerRepo.CreditTx(ctx, tx, sess.StudentID, sess.Cost, ledger.TxSessionRefund); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if sess.Cost > 0 {
		metrics.RecordCredit(ledger.TxSessionRefund, sess.Cost)
	}
	metrics.RecordSessionCancellation()
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]SessionWithNames, error) {
	return s.repo.ListForUser(ctx, userID)
}
