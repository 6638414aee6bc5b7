// Package money centralises fixed-point monetary arithmetic and display
// formatting. All ledger amounts are decimal.Decimal; binary floating
// point never touches paid/balance math.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Scale is the persisted scale for monetary columns (NUMERIC(12,2)).
const Scale = 2

var printer = message.NewPrinter(language.English)

// Round normalises an amount to the persisted scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Clamp floors an amount at zero.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LineTotal computes quantity*unitPrice + tax - discount at display scale.
func LineTotal(quantity, unitPrice, tax, discount decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice).Add(tax).Sub(discount))
}

// Format renders an amount with its currency symbol for API payloads
// and logs, e.g. "US$ 1,220.00". Unknown ISO codes fall back to a
// plain "CODE amount" rendering. The digits come straight from the
// decimal; the amount is never converted through a float.
func Format(amount decimal.Decimal, code string) string {
	text := groupedAmount(Round(amount))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%s %s", code, text)
	}
	return printer.Sprintf("%v %s", currency.Symbol(unit), text)
}

// groupedAmount renders the amount with locale digit grouping on the
// integer part and exactly Scale fraction digits.
func groupedAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Shift(Scale).IntPart()
	return printer.Sprintf("%s%d.%02d", sign, whole, cents)
}
