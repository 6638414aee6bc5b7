package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one line in a manual invoice payload.
type InvoiceLineRequest struct {
	ProductID      *int64          `json:"product_id,omitempty"`
	Description    string          `json:"description" validate:"required,max=500"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// CreateInvoiceRequest creates an invoice either from manual lines or
// from an existing order (OrderID set, lines copied from the order).
type CreateInvoiceRequest struct {
	Type        InvoiceType          `json:"type" validate:"required,oneof=PURCHASE SALES"`
	ContactID   int64                `json:"contact_id" validate:"omitempty,gt=0"`
	OrderID     *int64               `json:"order_id,omitempty"`
	InvoiceDate time.Time            `json:"invoice_date"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Currency    string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes       string               `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Lines       []InvoiceLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// ListInvoicesRequest filters the invoice list.
type ListInvoicesRequest struct {
	Type      InvoiceType
	Status    InvoiceStatus
	ContactID int64
	Limit     int
	Offset    int
}

// CreatePaymentRequest records a payment against an invoice.
type CreatePaymentRequest struct {
	InvoiceID   int64           `json:"invoice_id" validate:"required,gt=0"`
	PaymentDate time.Time       `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method" validate:"required,oneof=CASH BANK CHEQUE CARD DIGITAL"`
	Reference   string          `json:"reference,omitempty" validate:"omitempty,max=100"`
	BankAccount string          `json:"bank_account,omitempty" validate:"omitempty,max=100"`
	ChequeDate  *time.Time      `json:"cheque_date,omitempty"`
	Notes       string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdatePaymentRequest amends a payment. A nil Amount keeps the
// recorded amount; a set Amount applies the difference to the invoice.
type UpdatePaymentRequest struct {
	PaymentDate   *time.Time       `json:"payment_date,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Method        *PaymentMethod   `json:"method,omitempty" validate:"omitempty,oneof=CASH BANK CHEQUE CARD DIGITAL"`
	Reference     *string          `json:"reference,omitempty" validate:"omitempty,max=100"`
	BankAccount   *string          `json:"bank_account,omitempty" validate:"omitempty,max=100"`
	ChequeDate    *time.Time       `json:"cheque_date,omitempty"`
	ClearanceDate *time.Time       `json:"clearance_date,omitempty"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
