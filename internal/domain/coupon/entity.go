package coupon

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status of a stored coupon. Expiry is a derived read-time state: a coupon
// whose expires_at has passed is treated as inactive by every reader even
// while the stored status is still StatusActive.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// DiscountCoupon is a time-bounded, single-use percentage discount grant
// tied to one user and one reward rule. The discount percent is copied from
// the rule at issuance time and is immune to later rule edits.
type DiscountCoupon struct {
	ID              uuid.UUID    `db:"id"`
	UserID          uuid.UUID    `db:"user_id"`
	RewardRuleID    uuid.UUID    `db:"reward_rule_id"`
	Code            string       `db:"code"`
	DiscountPercent float64      `db:"discount_percent"`
	Status          Status       `db:"status"`
	ExpiresAt       time.Time    `db:"expires_at"`
	UsedAt          sql.NullTime `db:"used_at"`
	CreatedAt       time.Time    `db:"created_at"`
}

// IsEligible reports whether the coupon can be applied at the given instant.
func (c *DiscountCoupon) IsEligible(now time.Time) bool {
	return c.Status == StatusActive && c.ExpiresAt.After(now)
}

// EligibleCoupon is the checkout-facing read model: a redeemable coupon
// joined with its rule's item slug and description for display.
type EligibleCoupon struct {
	DiscountCoupon
	ItemSlug        string         `db:"item_slug"`
	RuleDescription sql.NullString `db:"rule_description"`
}
