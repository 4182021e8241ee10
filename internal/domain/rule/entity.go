package rule

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RewardRule converts repeated purchases of one menu item into a discount
// coupon once the required cumulative quantity is reached.
type RewardRule struct {
	ID                uuid.UUID      `db:"id"`
	ItemSlug          string         `db:"item_slug"`
	RequiredPurchases int            `db:"required_purchases"`
	DiscountPercent   float64        `db:"discount_percent"`
	Description       sql.NullString `db:"description"`
	Active            bool           `db:"active"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
