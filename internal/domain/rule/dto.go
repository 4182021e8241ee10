package rule

import (
	"time"

	"github.com/google/uuid"
)

// CreateRuleRequest for creating a reward rule
type CreateRuleRequest struct {
	ItemSlug          string  `json:"item_slug" validate:"required,min=1,max=255"`
	RequiredPurchases int     `json:"required_purchases" validate:"required,gte=1"`
	DiscountPercent   float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	Description       string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Active            *bool   `json:"active,omitempty"`
}

// UpdateRuleRequest for editing a reward rule; nil fields are left unchanged
type UpdateRuleRequest struct {
	ItemSlug          *string  `json:"item_slug,omitempty" validate:"omitempty,min=1,max=255"`
	RequiredPurchases *int     `json:"required_purchases,omitempty" validate:"omitempty,gte=1"`
	DiscountPercent   *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Description       *string  `json:"description,omitempty" validate:"omitempty,max=500"`
}

// RuleResponse for API responses
type RuleResponse struct {
	ID                uuid.UUID `json:"id"`
	ItemSlug          string    `json:"item_slug"`
	RequiredPurchases int       `json:"required_purchases"`
	DiscountPercent   float64   `json:"discount_percent"`
	Description       string    `json:"description,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         string    `json:"created_at"`
	UpdatedAt         string    `json:"updated_at"`
}

// ToResponse converts entity to response
func ToResponse(r *RewardRule) *RuleResponse {
	resp := &RuleResponse{
		ID:                r.ID,
		ItemSlug:          r.ItemSlug,
		RequiredPurchases: r.RequiredPurchases,
		DiscountPercent:   r.DiscountPercent,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Description.Valid {
		resp.Description = r.Description.String
	}
	return resp
}
