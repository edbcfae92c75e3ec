// Package transport defines the request/response DTOs for the offers module.
package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OfferStatus represents the lifecycle state of an offer
type OfferStatus string

const (
	OfferStatusDraft     OfferStatus = "draft"
	OfferStatusSent      OfferStatus = "sent"
	OfferStatusCompleted OfferStatus = "completed"
	OfferStatusCancelled OfferStatus = "cancelled"
)

// OfferItemRequest is a line item inside an option request
type OfferItemRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	CustomName      *string    `json:"customName" validate:"omitempty,max=200"`
	UnitPriceCents  int64      `json:"unitPriceCents" validate:"gte=0"`
	Quantity        float64    `json:"quantity" validate:"gt=0"`
	DiscountPercent float64    `json:"discountPercent" validate:"gte=0,lte=100"`
	IsOptional      bool       `json:"isOptional"`
	ProductID       *uuid.UUID `json:"productId"`
}

// OfferOptionRequest is one selectable bundle in a create/update request
type OfferOptionRequest struct {
	Name       string             `json:"name" validate:"required,max=200"`
	ScopeID    *string            `json:"scopeId" validate:"omitempty,max=100"`
	IsUpsell   bool               `json:"isUpsell"`
	IsSelected bool               `json:"isSelected"`
	Items      []OfferItemRequest `json:"items" validate:"dive"`
}

// CreateOfferRequest creates an offer with its full option tree
type CreateOfferRequest struct {
	CustomerName  string               `json:"customerName" validate:"required,max=200"`
	CustomerEmail string               `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string               `json:"customerPhone" validate:"omitempty,max=30"`
	VATRate       *int                 `json:"vatRate" validate:"omitempty,gte=0,lte=100"`
	Notes         string               `json:"notes" validate:"omitempty,max=5000"`
	Options       []OfferOptionRequest `json:"options" validate:"dive"`
}

// UpdateOfferRequest updates an offer; nil fields are left unchanged.
// Supplying Options replaces the whole option tree.
type UpdateOfferRequest struct {
	CustomerName  *string               `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail *string               `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone *string               `json:"customerPhone" validate:"omitempty,max=30"`
	VATRate       *int                  `json:"vatRate" validate:"omitempty,gte=0,lte=100"`
	Notes         *string               `json:"notes" validate:"omitempty,max=5000"`
	Options       *[]OfferOptionRequest `json:"options" validate:"omitempty,dive"`
}

// ApproveTotalsRequest carries the manually edited amounts as the user typed
// them. LastEdited marks which field the admin touched last and wins when both
// parse to positive amounts.
type ApproveTotalsRequest struct {
	Net        string `json:"net" validate:"omitempty,max=20"`
	Gross      string `json:"gross" validate:"omitempty,max=20"`
	LastEdited string `json:"lastEdited" validate:"omitempty,oneof=net gross"`
}

// SelectionSnapshot is the point-in-time record of what the customer picked.
// It is derived data: ids may stop resolving after the catalog changes, and
// readers must tolerate that.
type SelectionSnapshot struct {
	// VariantChoices maps a scope to the chosen option id within that scope.
	VariantChoices map[string]uuid.UUID `json:"variantChoices,omitempty"`
	// UpsellChoices maps an upsell option id to accepted/declined.
	UpsellChoices map[uuid.UUID]bool `json:"upsellChoices,omitempty"`
	// ItemOverrides maps an item id to its fine-grained inclusion flag.
	ItemOverrides map[uuid.UUID]bool `json:"itemOverrides,omitempty"`
	// Pre-computed totals captured at selection time; authoritative when set.
	TotalNetCents   *int64 `json:"totalNetCents,omitempty"`
	TotalGrossCents *int64 `json:"totalGrossCents,omitempty"`
}

// SetSelectionRequest stores a customer's selection snapshot on the offer
type SetSelectionRequest struct {
	Selection SelectionSnapshot `json:"selection" validate:"required"`
}

// ListOffersRequest contains query parameters for listing offers
type ListOffersRequest struct {
	Status    string `form:"status"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// OfferItemResponse is the API view of one line item
type OfferItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	CustomName      *string    `json:"customName,omitempty"`
	UnitPriceCents  int64      `json:"unitPriceCents"`
	Quantity        float64    `json:"quantity"`
	DiscountPercent float64    `json:"discountPercent"`
	IsOptional      bool       `json:"isOptional"`
	ProductID       *uuid.UUID `json:"productId,omitempty"`
	LineNetCents    int64      `json:"lineNetCents"`
	SortOrder       int        `json:"sortOrder"`
}

// OfferOptionResponse is the API view of one option with its items
type OfferOptionResponse struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	ScopeID          *string             `json:"scopeId,omitempty"`
	IsUpsell         bool                `json:"isUpsell"`
	IsSelected       bool                `json:"isSelected"`
	SubtotalNetCents int64               `json:"subtotalNetCents"`
	SortOrder        int                 `json:"sortOrder"`
	Items            []OfferItemResponse `json:"items"`
}

// OfferResponse is the full API view of an offer
type OfferResponse struct {
	ID                 uuid.UUID             `json:"id"`
	OfferNumber        string                `json:"offerNumber"`
	CustomerName       string                `json:"customerName"`
	CustomerEmail      *string               `json:"customerEmail,omitempty"`
	CustomerPhone      *string               `json:"customerPhone,omitempty"`
	VATRate            int                   `json:"vatRate"`
	TotalNetCents      int64                 `json:"totalNetCents"`
	TotalGrossCents    int64                 `json:"totalGrossCents"`
	ApprovedNetCents   *int64                `json:"approvedNetCents,omitempty"`
	ApprovedGrossCents *int64                `json:"approvedGrossCents,omitempty"`
	ApprovedAt         *time.Time            `json:"approvedAt,omitempty"`
	Status             OfferStatus           `json:"status"`
	CompletedAt        *time.Time            `json:"completedAt,omitempty"`
	Notes              *string               `json:"notes,omitempty"`
	Options            []OfferOptionResponse `json:"options"`
	EditableNet        string                `json:"editableNet"`
	EditableGross      string                `json:"editableGross"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// EditablePrices returns the amounts a price editor should be initialized
// with: admin-approved values take precedence over the system totals; an
// offer without priced content yields empty strings.
func (o *OfferResponse) EditablePrices() (net string, gross string) {
	if o.ApprovedNetCents != nil && o.ApprovedGrossCents != nil {
		return FormatCents(*o.ApprovedNetCents), FormatCents(*o.ApprovedGrossCents)
	}
	if o.TotalNetCents != 0 || o.TotalGrossCents != 0 {
		return FormatCents(o.TotalNetCents), FormatCents(o.TotalGrossCents)
	}
	return "", ""
}

// FormatCents renders a cent amount as a plain two-decimal string
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// OfferListResponse is a paginated list of offers
type OfferListResponse struct {
	Items      []OfferResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ResolvedLineResponse is one purchased line derived from the selection snapshot
type ResolvedLineResponse struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// ResolvedSelectionResponse is the derived view of what the customer picked.
// A nil body (HTTP 200 with "selection": null) means the customer never chose.
type ResolvedSelectionResponse struct {
	Lines           []ResolvedLineResponse `json:"lines"`
	TotalNetCents   int64                  `json:"totalNetCents"`
	TotalGrossCents int64                  `json:"totalGrossCents"`
}

// CompleteOfferResponse reports the completion outcome. Warning carries a
// non-fatal secondary failure (reminder planning); the offer is completed
// regardless.
type CompleteOfferResponse struct {
	ID               uuid.UUID   `json:"id"`
	Status           OfferStatus `json:"status"`
	CompletedAt      time.Time   `json:"completedAt"`
	RemindersCreated int         `json:"remindersCreated"`
	Warning          *string     `json:"warning,omitempty"`
}
