package users

import (
	"time"

	"github.com/ledgerline/ledgerline/internal/rbac"
)

// User is an application login. CONTACT users carry the contact they
// are scoped to for the *_own permission checks.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         rbac.Role  `json:"role"`
	ContactID    *int64     `json:"contact_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateUserRequest is the payload for user provisioning.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required,max=120"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=ADMIN ACCOUNTANT CONTACT"`
	ContactID *int64 `json:"contact_id,omitempty"`
}
