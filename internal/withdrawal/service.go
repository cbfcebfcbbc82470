package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
	"github.com/pramrakhani/Mentor-Bridge/internal/logger"
	"github.com/pramrakhani/Mentor-Bridge/internal/metrics"
	"github.com/pramrakhani/Mentor-Bridge/internal/notification"
	"github.com/pramrakhani/Mentor-Bridge/internal/payout"
	"github.com/pramrakhani/Mentor-Bridge/internal/user"
)

var (
	ErrNotTutor             = errors.New("only tutors can withdraw tokens")
	ErrInsufficientTokens   = errors.New("insufficient tokens")
	ErrInvalidPayoutDetails = errors.New("invalid payout details")
	ErrInvalidTransition    = errors.New("invalid withdrawal status transition")
	ErrIdempotencyConflict  = errors.New("idempotency key reused with a different payload")
)

var (
	upiRegex   = regexp.MustCompile(`^[\w.\-]{2,}@[a-zA-Z]{2,}$`)
	ifscRegex  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// InsufficientTokensError carries need/have so handlers can render an
// actionable message. errors.Is matches ErrInsufficientTokens.
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
	Submit(ctx context.Context, tutorID int64, req SubmitRequest, idempotencyKey string) (*Withdrawal, error)
	Approve(ctx context.Context, id int64) (*Withdrawal, error)
	Reject(ctx context.Context, id int64, reason string) (*Withdrawal, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]Withdrawal, error)
	ListPending(ctx context.Context) ([]WithdrawalWithTutor, error)
}

type service struct {
	db         *sqlx.DB
	repo       Repository
	userRepo   user.Repository
	ledgerRepo ledger.Repository
	calculator *payout.Calculator
	notifier   *notification.Service
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	calculator *payout.Calculator,
	notifier *notification.Service,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		calculator: calculator,
		notifier:   notifier,
	}
}

// payoutDetails validates the method-specific target and flattens it to the
// stored string form.
func payoutDetails(req SubmitRequest) (string, error) {
	switch req.PayoutMethod {
	case MethodUPI:
		if !upiRegex.MatchString(req.UPIID) {
			return "", fmt.Errorf("%w: valid UPI id required", ErrInvalidPayoutDetails)
		}
		return req.UPIID, nil
	case MethodBank:
		if req.BankAccount == "" || !ifscRegex.MatchString(req.BankIFSC) {
			return "", fmt.Errorf("%w: bank account and IFSC code required", ErrInvalidPayoutDetails)
		}
		return fmt.Sprintf("%s (IFSC: %s)", req.BankAccount, req.BankIFSC), nil
	case MethodPayPal:
		if !emailRegex.MatchString(req.PayPalEmail) {
			return "", fmt.Errorf("%w: valid PayPal email required", ErrInvalidPayoutDetails)
		}
		return req.PayPalEmail, nil
	default:
		return "", fmt.Errorf("%w: unknown payout method %q", ErrInvalidPayoutDetails, req.PayoutMethod)
	}
}

// Submit validates the request, computes the currency split and, in one
// transaction, creates the pending withdrawal while debiting the tokens
// from the tutor's balance. Pending requests therefore already hold their
// tokens out of the visible balance.
func (s *service) Submit(ctx context.Context, tutorID int64, req SubmitRequest, idempotencyKey string) (*Withdrawal, error) {
	tutor, err := s.userRepo.FindByID(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if tutor.UserType != user.TypeTutor {
		return nil, ErrNotTutor
	}

	details, err := payoutDetails(req)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, tutorID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if !samePayload(existing, req, details) {
				return nil, ErrIdempotencyConflict
			}
			return existing, nil
		}
	}

	breakdown, err := s.calculator.Calculate(req.Tokens)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if req.Tokens > balance {
		return nil, &InsufficientTokensError{Need: req.Tokens, Have: balance}
	}

	w := &Withdrawal{
		TutorID:       tutorID,
		Tokens:        req.Tokens,
		GrossAmount:   breakdown.Gross,
		Commission:    breakdown.Commission,
		NetAmount:     breakdown.Net,
		PayoutMethod:  req.PayoutMethod,
		PayoutDetails: details,
		IdempotencyKey: sql.NullString{
			String: idempotencyKey,
			Valid:  idempotencyKey != "",
		},
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(ctx, tx, w); err != nil {
		if IsUniqueViolation(err) && idempotencyKey != "" {
			// Lost a race with a concurrent replay of the same key.
			tx.Rollback()
			existing, gerr := s.repo.GetByIdempotencyKey(ctx, tutorID, idempotencyKey)
			if gerr != nil || existing == nil {
				return nil, err
			}
			if !samePayload(existing, req, details) {
				return nil, ErrIdempotencyConflict
			}
			return existing, nil
		}
		return nil, err
	}

	if _, err := s.ledgerRepo.DebitTx(ctx, tx, tutorID, req.Tokens, ledger.TxWithdrawalHold); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return nil, &InsufficientTokensError{Need: req.Tokens, Have: balance}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordDebit(ledger.TxWithdrawalHold, req.Tokens)
	metrics.RecordWithdrawal(StatusPending)
	return w, nil
}

func samePayload(existing *Withdrawal, req SubmitRequest, details string) bool {
	return existing.Tokens == req.Tokens &&
		existing.PayoutMethod == req.PayoutMethod &&
		existing.PayoutDetails == details
}

// Approve moves a pending withdrawal to completed. Terminal states never
// transition again.
func (s *service) Approve(ctx context.Context, id int64) (*Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if w.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateStatusTx(ctx, tx, id, StatusPending, StatusCompleted, ""); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal(StatusCompleted)
	s.notifyProcessed(ctx, w, StatusCompleted)

	return s.repo.GetByID(ctx, id)
}

// Reject moves a pending withdrawal to rejected and credits the held tokens
// back to the tutor in the same transaction.
func (s *service) Reject(ctx context.Context, id int64, reason string) (*Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if w.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateStatusTx(ctx, tx, id, StatusPending, StatusRejected, reason); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	if _, err := s.ledgerRepo.CreditTx(ctx, tx, w.TutorID, w.Tokens, ledger.TxWithdrawalRefund); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordCredit(ledger.TxWithdrawalRefund, w.Tokens)
	metrics.RecordWithdrawal(StatusRejected)
	s.notifyProcessed(ctx, w, StatusRejected)

	return s.repo.GetByID(ctx, id)
}

func (s *service) notifyProcessed(ctx context.Context, w *Withdrawal, status string) {
	if s.notifier == nil {
		return
	}

	tutor, err := s.userRepo.FindByID(ctx, w.TutorID)
	if err != nil {
		return
	}

	if err := s.notifier.SendWithdrawalProcessed(ctx, tutor.Email, tutor.Name, w.Tokens, w.NetAmount.StringFixed(2), status); err != nil {
		logger.Errorf("Failed to queue withdrawal notification: %v", err)
	}
}

func (s *service) ListByTutor(ctx context.Context, tutorID int64) ([]Withdrawal, error) {
	return s.repo.ListByTutor(ctx, tutorID)
}

func (s *service) ListPending(ctx context.Context) ([]WithdrawalWithTutor, error) {
	return s.repo.ListPending(ctx)
}
