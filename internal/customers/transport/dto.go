// Package transport defines the request/response DTOs for the customers module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateCustomerRequest creates a CRM customer.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateCustomerRequest updates a customer; nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// CustomerResponse is the API view of a customer.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerListResponse is a search result.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Total int                `json:"total"`
}
