package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line in a create or replace payload.
type OrderItemRequest struct {
	ProductID      *int64          `json:"product_id,omitempty"`
	Description    string          `json:"description" validate:"required,max=500"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// CreateOrderRequest opens a new order in DRAFT.
type CreateOrderRequest struct {
	ContactID    int64              `json:"contact_id" validate:"required,gt=0"`
	OrderDate    time.Time          `json:"order_date"`
	ExpectedDate *time.Time         `json:"expected_date,omitempty"`
	Notes        string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items        []OrderItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// UpdateOrderRequest amends a DRAFT order and may apply a status change
// in the same call. Items, when present, replace the full line set
// before the status is applied.
type UpdateOrderRequest struct {
	Status       OrderStatus         `json:"status,omitempty" validate:"omitempty,oneof=DRAFT CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
	Notes        *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	Items        *[]OrderItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// TransitionRequest moves an order to a new status.
type TransitionRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=DRAFT CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
	Notes  *string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListOrdersRequest filters the order list.
type ListOrdersRequest struct {
	Kind      OrderKind
	Status    OrderStatus
	ContactID int64
	Limit     int
	Offset    int
}
