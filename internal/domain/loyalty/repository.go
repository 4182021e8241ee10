package loyalty

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/canteenhq/canteen-api/internal/domain/coupon"
	"github.com/canteenhq/canteen-api/internal/domain/rule"
)

// Repository applies ledger mutations and conditional coupon issuance.
type Repository interface {
	// ApplyPurchase runs the whole update-and-maybe-issue sequence for one
	// order line as a single transaction: lock the (user, item) ledger row,
	// increment the count, and mint a coupon when the count crosses the
	// matched rule's milestone for the first time. Returns the updated entry
	// and the minted coupon, if any.
	ApplyPurchase(ctx context.Context, userID uuid.UUID, itemSlug string, quantity int, matched *rule.RewardRule, couponTTL time.Duration) (*LedgerEntry, *coupon.DiscountCoupon, error)

	// ListProgress returns the user's ledger joined with matching active rules.
	ListProgress(ctx context.Context, userID uuid.UUID) ([]ProgressEntry, error)

	// GetEntry returns the ledger entry for (user, item), or nil when the
	// user has never purchased the item.
	GetEntry(ctx context.Context, userID uuid.UUID, itemSlug string) (*LedgerEntry, error)
}

type repository struct {
	db      *sqlx.DB
	coupons coupon.Repository
}

// NewRepository creates ledger repository
func NewRepository(db *sqlx.DB, coupons coupon.Repository) Repository {
	return &repository{db: db, coupons: coupons}
}

func (r *repository) ApplyPurchase(ctx context.Context, userID uuid.UUID, itemSlug string, quantity int, matched *rule.RewardRule, couponTTL time.Duration) (*LedgerEntry, *coupon.DiscountCoupon, error) {
	// A unique-violation on coupon insert aborts the whole transaction,
	// ledger increment included. One retry is enough: the second attempt
	// observes the committed winner and skips issuance.
	entry, minted, err := r.applyOnce(ctx, userID, itemSlug, quantity, matched, couponTTL)
	if errors.Is(err, coupon.ErrDuplicateActive) || errors.Is(err, coupon.ErrCodeCollision) {
		entry, minted, err = r.applyOnce(ctx, userID, itemSlug, quantity, matched, couponTTL)
	}
	return entry, minted, err
}

func (r *repository) applyOnce(ctx context.Context, userID uuid.UUID, itemSlug string, quantity int, matched *rule.RewardRule, couponTTL time.Duration) (*LedgerEntry, *coupon.DiscountCoupon, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	previousCount, err := r.lockEntry(ctx, tx, userID, itemSlug)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	newCount := previousCount + quantity

	var linkedRuleID uuid.NullUUID
	if matched != nil {
		linkedRuleID = uuid.NullUUID{UUID: matched.ID, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE loyalty_ledger
		SET purchase_count = $3, linked_rule_id = $4, updated_at = $5
		WHERE user_id = $1 AND item_slug = $2
	`, userID, itemSlug, newCount, linkedRuleID, now); err != nil {
		return nil, nil, err
	}

	entry := &LedgerEntry{
		UserID:        userID,
		ItemSlug:      itemSlug,
		PurchaseCount: newCount,
		LinkedRuleID:  linkedRuleID,
		UpdatedAt:     now,
	}

	var minted *coupon.DiscountCoupon
	if matched != nil && crossedMilestone(previousCount, newCount, matched.RequiredPurchases) {
		minted, err = r.issueCoupon(ctx, tx, userID, matched, now, couponTTL)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return entry, minted, nil
}

// lockEntry creates the (user, item) ledger row on first purchase and takes
// a row lock held for the rest of the transaction, serializing concurrent
// orders for the same pair.
func (r *repository) lockEntry(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, itemSlug string) (int, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO loyalty_ledger (user_id, item_slug, purchase_count)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, item_slug) DO NOTHING
	`, userID, itemSlug); err != nil {
		return 0, err
	}

	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT purchase_count FROM loyalty_ledger
		WHERE user_id = $1 AND item_slug = $2
		FOR UPDATE
	`, userID, itemSlug)
	return count, err
}

// issueCoupon mints at most one coupon for (user, rule) on the caller's
// transaction. An existing unexpired active coupon means a previous crossing
// already granted one, so the milestone is silently skipped.
func (r *repository) issueCoupon(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, matched *rule.RewardRule, now time.Time, couponTTL time.Duration) (*coupon.DiscountCoupon, error) {
	if err := r.coupons.ExpireOverdueTx(ctx, tx, userID, matched.ID, now); err != nil {
		return nil, err
	}

	hasActive, err := r.coupons.HasActiveTx(ctx, tx, userID, matched.ID, now)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, nil
	}

	code, err := coupon.GenerateCode(matched.ItemSlug)
	if err != nil {
		return nil, err
	}

	c := &coupon.DiscountCoupon{
		ID:              uuid.New(),
		UserID:          userID,
		RewardRuleID:    matched.ID,
		Code:            code,
		DiscountPercent: matched.DiscountPercent,
		Status:          coupon.StatusActive,
		ExpiresAt:       now.Add(couponTTL),
		CreatedAt:       now,
	}
	if err := r.coupons.InsertTx(ctx, tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) ListProgress(ctx context.Context, userID uuid.UUID) ([]ProgressEntry, error) {
	query := `
		SELECT l.user_id, l.item_slug, l.purchase_count, l.linked_rule_id, l.updated_at,
			r.id AS rule_id,
			r.required_purchases,
			r.discount_percent AS rule_discount_percent,
			r.description AS rule_description
		FROM loyalty_ledger l
		LEFT JOIN reward_rules r ON r.item_slug = l.item_slug AND r.active
		WHERE l.user_id = $1
		ORDER BY l.updated_at DESC
	`

	var entries []ProgressEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) GetEntry(ctx context.Context, userID uuid.UUID, itemSlug string) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := r.db.GetContext(ctx, &entry, `
		SELECT * FROM loyalty_ledger WHERE user_id = $1 AND item_slug = $2
	`, userID, itemSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// crossedMilestone reports whether this update took the count from below the
// rule's threshold to at or above it. A single line whose quantity alone
// clears the threshold crosses it; a count already past the threshold never
// crosses again.
func crossedMilestone(previousCount, newCount, requiredPurchases int) bool {
	return previousCount < requiredPurchases && newCount >= requiredPurchases
}
