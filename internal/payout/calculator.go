package payout

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("tokens must be positive")

// Breakdown is the currency split of a token withdrawal.
// Net carries any rounding remainder so Gross == Commission + Net always.
type Breakdown struct {
	Tokens     int64           `json:"tokens"`
	Gross      decimal.Decimal `json:"gross_amount"`
	Commission decimal.Decimal `json:"commission"`
	Net        decimal.Decimal `json:"net_amount"`
}

type Calculator struct {
	tokenRate      decimal.Decimal
	commissionRate decimal.Decimal
}

// NewCalculator builds a calculator for a token-to-currency rate and a
// commission rate in [0,1).
func NewCalculator(tokenRate, commissionRate decimal.Decimal) *Calculator {
	return &Calculator{
		tokenRate:      tokenRate,
		commissionRate: commissionRate,
	}
}

// Calculate converts tokens into gross/commission/net currency amounts,
// rounded to 2 minor-unit places. Pure and deterministic.
func (c *Calculator) Calculate(tokens int64) (Breakdown, error) {
	if tokens <= 0 {
		return Breakdown{}, ErrInvalidAmount
	}

	gross := decimal.NewFromInt(tokens).Mul(c.tokenRate).Round(2)
	commission := gross.Mul(c.commissionRate).Round(2)
	net := gross.Sub(commission)

	return Breakdown{
		Tokens:     tokens,
		Gross:      gross,
		Commission: commission,
		Net:        net,
	}, nil
}
