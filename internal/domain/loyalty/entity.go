package loyalty

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is the durable per-user, per-item purchase counter. Exactly
// one row exists per (user, item) pair; the count only ever increases, by
// the exact quantity of the item in each processed order, and is never
// deleted or reset.
type LedgerEntry struct {
	UserID        uuid.UUID     `db:"user_id"`
	ItemSlug      string        `db:"item_slug"`
	PurchaseCount int           `db:"purchase_count"`
	LinkedRuleID  uuid.NullUUID `db:"linked_rule_id"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// ProgressEntry is a ledger entry joined with the active rule matching its
// slug, for the user-facing rewards view. Rule fields are null when no
// active rule currently targets the item.
type ProgressEntry struct {
	LedgerEntry
	RuleID            uuid.NullUUID   `db:"rule_id"`
	RequiredPurchases sql.NullInt64   `db:"required_purchases"`
	DiscountPercent   sql.NullFloat64 `db:"rule_discount_percent"`
	RuleDescription   sql.NullString  `db:"rule_description"`
}
