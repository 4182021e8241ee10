package loyalty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/canteenhq/canteen-api/internal/domain/coupon"
	"github.com/canteenhq/canteen-api/internal/domain/rule"
)

// RuleProvider supplies the active-rule snapshot. One snapshot is taken per
// processed order so rule edits mid-order cannot make the decision
// inconsistent across line items.
type RuleProvider interface {
	ListActiveRules(ctx context.Context) ([]rule.RewardRule, error)
}

// OrderItem is one finalized order line handed to the engine. Slug is
// preferred; Name is the deterministic fallback, normalized to the catalog's
// slug convention.
type OrderItem struct {
	Slug     string
	Name     string
	Quantity int
}

// ItemResult is the outcome of processing one order line. A failed line
// carries its error here; it never aborts the other lines.
type ItemResult struct {
	ItemSlug      string
	Quantity      int
	PurchaseCount int
	Coupon        *coupon.DiscountCoupon
	Err           error
}

// Engine converts completed orders into ledger updates and milestone
// coupons. It is invoked once per finalized order, after the order has been
// accepted; its mutations are deliberately outside the order's own
// transaction boundary and are never rolled back by a later order failure.
type Engine struct {
	repo      Repository
	rules     RuleProvider
	events    EventPublisher
	couponTTL time.Duration
}

// NewEngine creates the reward engine. events may be nil.
func NewEngine(repo Repository, rules RuleProvider, events EventPublisher, couponTTL time.Duration) *Engine {
	return &Engine{repo: repo, rules: rules, events: events, couponTTL: couponTTL}
}

// ProcessOrder updates the ledger for every line of an accepted order and
// mints a coupon for each item whose count crosses its active rule's
// milestone for the first time. Validation failures reject the whole call
// before anything is applied; per-item store failures are isolated and
// surfaced on that item's result only.
func (e *Engine) ProcessOrder(ctx context.Context, userID uuid.UUID, items []OrderItem) ([]ItemResult, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	slugs := make([]string, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		slug := resolveSlug(item)
		if slug == "" {
			return nil, ErrUnresolvedItem
		}
		slugs[i] = slug
	}

	activeRules, err := e.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*rule.RewardRule, len(activeRules))
	for i := range activeRules {
		if _, ok := bySlug[activeRules[i].ItemSlug]; !ok {
			bySlug[activeRules[i].ItemSlug] = &activeRules[i]
		}
	}

	results := make([]ItemResult, len(items))
	for i, item := range items {
		slug := slugs[i]
		result := ItemResult{ItemSlug: slug, Quantity: item.Quantity}

		// No active rule: the ledger still advances so that purchases count
		// toward a rule activated later. Slug mismatch is "no rule", not an
		// error.
		entry, minted, err := e.repo.ApplyPurchase(ctx, userID, slug, item.Quantity, bySlug[slug], e.couponTTL)
		if err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID.String()).
				Str("item_slug", slug).
				Int("quantity", item.Quantity).
				Msg("loyalty update failed for order line")
			result.Err = err
			results[i] = result
			continue
		}

		result.PurchaseCount = entry.PurchaseCount
		result.Coupon = minted
		results[i] = result

		if minted != nil {
			log.Info().
				Str("user_id", userID.String()).
				Str("item_slug", slug).
				Str("code", minted.Code).
				Float64("discount_percent", minted.DiscountPercent).
				Msg("milestone crossed, coupon issued")

			// The coupon is committed by now; emission is fire-and-forget.
			if e.events != nil {
				e.events.PublishRewardEarned(ctx, RewardEvent{
					UserID:          userID,
					ItemSlug:        slug,
					CouponID:        minted.ID,
					Code:            minted.Code,
					DiscountPercent: minted.DiscountPercent,
					ExpiresAt:       minted.ExpiresAt,
				})
			}
		}
	}

	return results, nil
}

// ListProgress returns the user's per-item counters joined with the active
// rules they count toward.
func (e *Engine) ListProgress(ctx context.Context, userID uuid.UUID) ([]ProgressEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	return e.repo.ListProgress(ctx, userID)
}

func resolveSlug(item OrderItem) string {
	if item.Slug != "" {
		return rule.NormalizeSlug(item.Slug)
	}
	return rule.NormalizeSlug(item.Name)
}
