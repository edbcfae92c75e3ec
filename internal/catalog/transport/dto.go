// Package transport defines the request/response DTOs for the catalog module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// TemplateItemRequest is one reminder template entry in a create/update request.
type TemplateItemRequest struct {
	MonthsAfter int    `json:"monthsAfter" validate:"required,min=1,max=120"`
	IsPaid      bool   `json:"isPaid"`
	ServiceType string `json:"serviceType" validate:"required,max=100"`
}

// CreateTemplateRequest creates a reminder template with its items.
type CreateTemplateRequest struct {
	Name  string                `json:"name" validate:"required,max=200"`
	Items []TemplateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateTemplateRequest replaces a template's name and item set.
type UpdateTemplateRequest struct {
	Name  string                `json:"name" validate:"required,max=200"`
	Items []TemplateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TemplateItemResponse is one reminder template entry.
type TemplateItemResponse struct {
	ID          uuid.UUID `json:"id"`
	MonthsAfter int       `json:"monthsAfter"`
	IsPaid      bool      `json:"isPaid"`
	ServiceType string    `json:"serviceType"`
	SortOrder   int       `json:"sortOrder"`
}

// TemplateResponse is a reminder template with its items.
type TemplateResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Items     []TemplateItemResponse `json:"items"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// TemplateListResponse is a list of templates.
type TemplateListResponse struct {
	Items []TemplateResponse `json:"items"`
	Total int                `json:"total"`
}

// ProductResponse is the reminder-engine view of a catalog product.
type ProductResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	ServiceType           string     `json:"serviceType"`
	DefaultIntervalMonths *int       `json:"defaultIntervalMonths,omitempty"`
	ReminderTemplateID    *uuid.UUID `json:"reminderTemplateId,omitempty"`
	IsActive              bool       `json:"isActive"`
}

// ProductListResponse is a list of products.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
