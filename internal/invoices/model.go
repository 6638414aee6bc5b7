package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType separates vendor bills from customer invoices. The two
// share storage and lifecycle, only the counterparty and the document
// number prefix differ.
type InvoiceType string

const (
	TypePurchase InvoiceType = "PURCHASE"
	TypeSales    InvoiceType = "SALES"
)

func (t InvoiceType) Valid() bool {
	return t == TypePurchase || t == TypeSales
}

// NumberPrefix returns BILL for vendor bills and INV for customer
// invoices.
func (t InvoiceType) NumberPrefix() string {
	if t == TypePurchase {
		return "BILL"
	}
	return "INV"
}

// InvoiceStatus is the settlement state of an invoice. UNPAID, PARTIAL
// and PAID are derived from amounts; OVERDUE is set by the due-date
// sweep and CANCELLED by explicit cancellation.
type InvoiceStatus string

const (
	StatusUnpaid    InvoiceStatus = "UNPAID"
	StatusPartial   InvoiceStatus = "PARTIAL"
	StatusPaid      InvoiceStatus = "PAID"
	StatusOverdue   InvoiceStatus = "OVERDUE"
	StatusCancelled InvoiceStatus = "CANCELLED"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "CASH"
	MethodBank    PaymentMethod = "BANK"
	MethodCheque  PaymentMethod = "CHEQUE"
	MethodCard    PaymentMethod = "CARD"
	MethodDigital PaymentMethod = "DIGITAL"
)

// Invoice is a vendor bill or customer invoice. Balance is always
// max(0, total - paid).
type Invoice struct {
	ID             int64           `json:"id"`
	Type           InvoiceType     `json:"type"`
	Number         string          `json:"number"`
	ContactID      int64           `json:"contact_id"`
	OrderID        *int64          `json:"order_id,omitempty"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Status         InvoiceStatus   `json:"status"`
	Total          decimal.Decimal `json:"total_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Paid           decimal.Decimal `json:"paid_amount"`
	Balance        decimal.Decimal `json:"balance_amount"`
	Currency       string          `json:"currency"`
	Notes          string          `json:"notes,omitempty"`
	Lines          []InvoiceLine   `json:"lines,omitempty"`
	Payments       []Payment       `json:"payments,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceLine is one line on an invoice, stored alongside order items
// under the INVOICE discriminator.
type InvoiceLine struct {
	ID             int64           `json:"id"`
	InvoiceID      int64           `json:"invoice_id"`
	ProductID      *int64          `json:"product_id,omitempty"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Payment settles part or all of one invoice.
type Payment struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	InvoiceID     int64           `json:"invoice_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	BankAccount   string          `json:"bank_account,omitempty"`
	ChequeDate    *time.Time      `json:"cheque_date,omitempty"`
	ClearanceDate *time.Time      `json:"clearance_date,omitempty"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
