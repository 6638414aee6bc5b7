package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distinguishes purchase orders from sales orders. Both share
// the same lifecycle and storage, only the counterparty role differs.
type OrderKind string

const (
	KindPurchase OrderKind = "PURCHASE"
	KindSales    OrderKind = "SALES"
)

func (k OrderKind) Valid() bool {
	return k == KindPurchase || k == KindSales
}

// NumberPrefix returns the document number prefix for the kind.
func (k OrderKind) NumberPrefix() string {
	if k == KindPurchase {
		return "PO"
	}
	return "SO"
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusDraft      OrderStatus = "DRAFT"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Order is a purchase or sales order with its line items.
type Order struct {
	ID           int64           `json:"id"`
	Kind         OrderKind       `json:"kind"`
	Number       string          `json:"number"`
	ContactID    int64           `json:"contact_id"`
	Status       OrderStatus     `json:"status"`
	OrderDate    time.Time       `json:"order_date"`
	ExpectedDate *time.Time      `json:"expected_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Items        []OrderItem     `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem is a single line on an order. The stored total is
// quantity * unit_price + tax - discount, rounded to two places.
type OrderItem struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	ProductID      *int64          `json:"product_id,omitempty"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}
