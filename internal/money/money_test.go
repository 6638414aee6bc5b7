package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	total := LineTotal(
		decimal.NewFromInt(2),
		decimal.NewFromInt(100),
		decimal.NewFromInt(20),
		decimal.Zero,
	)
	require.True(t, total.Equal(decimal.NewFromInt(220)), "got %s", total)
}

func TestLineTotalDiscount(t *testing.T) {
	total := LineTotal(
		decimal.NewFromInt(1),
		decimal.RequireFromString("99.99"),
		decimal.Zero,
		decimal.RequireFromString("9.99"),
	)
	require.Equal(t, "90.00", total.StringFixed(2))
}

func TestClamp(t *testing.T) {
	require.True(t, Clamp(decimal.NewFromInt(-5)).IsZero())
	require.True(t, Clamp(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}

func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, "10.01", Round(decimal.RequireFromString("10.005")).StringFixed(2))
}

func TestFormatKnownCurrency(t *testing.T) {
	got := Format(decimal.NewFromInt(1220), "USD")
	require.Contains(t, got, "1,220.00")
}

func TestFormatUnknownCurrency(t *testing.T) {
	got := Format(decimal.NewFromInt(42), "???")
	require.Contains(t, got, "42.00")
}

func TestFormatLargeAmountExact(t *testing.T) {
	// 9999999999.99 is not exactly representable in binary floating
	// point; the rendered digits must come from the decimal untouched.
	got := Format(decimal.RequireFromString("9999999999.99"), "USD")
	require.Contains(t, got, "9,999,999,999.99")
}

func TestFormatNegative(t *testing.T) {
	got := Format(decimal.RequireFromString("-12.50"), "EUR")
	require.Contains(t, got, "-12.50")
}
