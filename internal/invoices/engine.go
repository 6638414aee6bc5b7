package invoices

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/money"
)

// DeriveStatus computes the settlement status from amounts. It only
// ever yields UNPAID, PARTIAL or PAID; OVERDUE and CANCELLED are set
// elsewhere and any payment mutation re-derives over them.
func DeriveStatus(total, paid decimal.Decimal) InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// BalanceOf is the open amount, floored at zero so overpayment never
// produces a negative balance.
func BalanceOf(total, paid decimal.Decimal) decimal.Decimal {
	return money.Clamp(total.Sub(paid))
}
