package contacts

import "time"

// ContactKind distinguishes customers from vendors.
type ContactKind string

const (
	KindCustomer ContactKind = "CUSTOMER"
	KindVendor   ContactKind = "VENDOR"
	KindBoth     ContactKind = "BOTH"
)

// Contact is a counterparty referenced by orders and invoices.
type Contact struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Kind      ContactKind `json:"kind"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	TaxNumber string      `json:"tax_number,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UpsertContactRequest is the payload for create and update.
type UpsertContactRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Kind      string `json:"kind" validate:"required,oneof=CUSTOMER VENDOR BOTH"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address   string `json:"address,omitempty" validate:"omitempty,max=500"`
	TaxNumber string `json:"tax_number,omitempty" validate:"omitempty,max=40"`
}

// ListContactsRequest filters the contact list.
type ListContactsRequest struct {
	Kind   ContactKind
	Search string
	Limit  int
	Offset int
}
