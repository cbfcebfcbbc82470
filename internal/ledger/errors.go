package ledger

import "errors"

var (
	ErrAccountNotFound     = errors.New("token account not found")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)
