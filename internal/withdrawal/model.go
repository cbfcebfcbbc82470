package withdrawal

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses. pending is the only non-terminal state.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Payout methods.
const (
	MethodUPI    = "upi"
	MethodBank   = "bank"
	MethodPayPal = "paypal"
)

// Withdrawal is a tutor's request to convert tokens to currency. The token
// amount and the currency split are immutable once created; the tokens are
// already held out of the tutor's balance while the request is pending.
type Withdrawal struct {
	ID             int64           `db:"id" json:"id"`
	TutorID        int64           `db:"tutor_id" json:"tutor_id"`
	Tokens         int64           `db:"tokens" json:"tokens"`
	GrossAmount    decimal.Decimal `db:"gross_amount" json:"gross_amount"`
	Commission     decimal.Decimal `db:"commission" json:"commission"`
	NetAmount      decimal.Decimal `db:"net_amount" json:"net_amount"`
	PayoutMethod   string          `db:"payout_method" json:"payout_method"`
	PayoutDetails  string          `db:"payout_details" json:"payout_details"`
	Status         string          `db:"status" json:"status"`
	RejectReason   string          `db:"reject_reason" json:"reject_reason,omitempty"`
	IdempotencyKey sql.NullString  `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt    *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

type SubmitRequest struct {
	Tokens       int64  `json:"tokens" binding:"required,gt=0"`
	PayoutMethod string `json:"payout_method" binding:"required,oneof=upi bank paypal"`
	UPIID        string `json:"upi_id"`
	BankAccount  string `json:"bank_account"`
	BankIFSC     string `json:"bank_ifsc"`
	PayPalEmail  string `json:"paypal_email"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type WithdrawalWithTutor struct {
	Withdrawal
	TutorName string `db:"tutor_name" json:"tutor_name"`
}
