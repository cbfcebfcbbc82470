package ledger

import "time"

// Account is a user's token balance. All mutation goes through Debit/Credit
// so the balance can never be written from a stale read.
type Account struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one ledger entry. Amount is signed: debits are negative.
type Transaction struct {
	ID           int64     `db:"id" json:"id"`
	AccountID    int64     `db:"account_id" json:"account_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Type         string    `db:"type" json:"type"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Ledger entry types.
const (
	TxStartingGrant    = "starting_grant"
	TxSessionPayment   = "session_payment"
	TxSessionRefund    = "session_refund"
	TxWithdrawalHold   = "withdrawal_hold"
	TxWithdrawalRefund = "withdrawal_refund"
	TxAdminTopUp       = "admin_topup"
)
