package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T, rate, commission string) *Calculator {
	t.Helper()
	return NewCalculator(
		decimal.RequireFromString(rate),
		decimal.RequireFromString(commission),
	)
}

func TestCalculate(t *testing.T) {
	calc := newTestCalculator(t, "1", "0.10")

	b, err := calc.Calculate(50)
	require.NoError(t, err)

	assert.Equal(t, int64(50), b.Tokens)
	assert.True(t, b.Gross.Equal(decimal.RequireFromString("50")))
	assert.True(t, b.Commission.Equal(decimal.RequireFromString("5")))
	assert.True(t, b.Net.Equal(decimal.RequireFromString("45")))
}

func TestCalculate_InvalidTokens(t *testing.T) {
	calc := newTestCalculator(t, "1", "0.10")

	_, err := calc.Calculate(0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = calc.Calculate(-10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCalculate_FractionalRate(t *testing.T) {
	calc := newTestCalculator(t, "0.75", "0.10")

	b, err := calc.Calculate(13)
	require.NoError(t, err)

	// 13 * 0.75 = 9.75, commission 0.98 (rounded), net takes the remainder
	assert.True(t, b.Gross.Equal(decimal.RequireFromString("9.75")))
	assert.True(t, b.Commission.Equal(decimal.RequireFromString("0.98")))
	assert.True(t, b.Net.Equal(decimal.RequireFromString("8.77")))
}

func TestCalculate_SplitAlwaysAddsUp(t *testing.T) {
	calc := newTestCalculator(t, "1.37", "0.13")

	for tokens := int64(1); tokens <= 500; tokens++ {
		b, err := calc.Calculate(tokens)
		require.NoError(t, err)
		assert.True(t, b.Commission.Add(b.Net).Equal(b.Gross),
			"commission + net must equal gross for %d tokens", tokens)
	}
}

func TestCalculate_ZeroCommission(t *testing.T) {
	calc := newTestCalculator(t, "1", "0")

	b, err := calc.Calculate(100)
	require.NoError(t, err)
	assert.True(t, b.Commission.IsZero())
	assert.True(t, b.Net.Equal(b.Gross))
}
