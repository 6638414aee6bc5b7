package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable or purchasable item referenced by order items.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpsertProductRequest is the payload for create and update.
type UpsertProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=60"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	HSNCode     string          `json:"hsn_code,omitempty" validate:"omitempty,max=20"`
}

// ListProductsRequest filters the product list.
type ListProductsRequest struct {
	Search string
	Limit  int
	Offset int
}
