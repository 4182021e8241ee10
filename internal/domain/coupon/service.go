package coupon

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles coupon listing, application and redemption.
type Service struct {
	repo Repository
}

// NewService creates coupon service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListEligible returns the user's redeemable coupons: active status and not
// yet expired, joined with rule details for display.
func (s *Service) ListEligible(ctx context.Context, userID uuid.UUID) ([]EligibleCoupon, error) {
	return s.repo.ListEligible(ctx, userID, time.Now())
}

// Apply computes the discount a coupon yields on a cart subtotal in cents.
// Purely arithmetic; coupon state is untouched until Redeem.
func Apply(discountPercent float64, subtotalCents int64) int64 {
	return int64(math.Round(float64(subtotalCents) * discountPercent / 100))
}

// ApplyCoupon validates that the user's coupon is currently eligible and
// returns the discount it yields on the subtotal. Read-only.
func (s *Service) ApplyCoupon(ctx context.Context, userID, couponID uuid.UUID, subtotalCents int64) (*DiscountCoupon, int64, error) {
	c, err := s.getOwned(ctx, userID, couponID)
	if err != nil {
		return nil, 0, err
	}
	if !c.IsEligible(time.Now()) {
		return nil, 0, ErrNotEligible
	}
	return c, Apply(c.DiscountPercent, subtotalCents), nil
}

// Redeem transitions a coupon to used once order placement is confirmed.
// Eligibility is re-validated server-side; a stale client-side list is never
// trusted. Redeeming an already-used coupon is a no-op so that a duplicate
// call from checkout cannot block the order.
func (s *Service) Redeem(ctx context.Context, userID, couponID uuid.UUID) (*DiscountCoupon, error) {
	c, err := s.getOwned(ctx, userID, couponID)
	if err != nil {
		return nil, err
	}

	if c.Status == StatusUsed {
		return c, nil
	}

	now := time.Now()
	redeemed, err := s.repo.MarkUsed(ctx, couponID, now)
	if err != nil {
		return nil, err
	}
	if !redeemed {
		// Lost a race or expired between read and update; re-read to tell
		// an idempotent repeat apart from an ineligible coupon.
		c, err = s.repo.GetByID(ctx, couponID)
		if err != nil {
			return nil, err
		}
		if c.Status == StatusUsed {
			return c, nil
		}
		return nil, ErrNotEligible
	}

	c.Status = StatusUsed
	log.Info().
		Str("user_id", userID.String()).
		Str("coupon_id", couponID.String()).
		Str("code", c.Code).
		Msg("coupon redeemed")
	return c, nil
}

func (s *Service) getOwned(ctx context.Context, userID, couponID uuid.UUID) (*DiscountCoupon, error) {
	c, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	// Foreign coupons are indistinguishable from missing ones.
	if c.UserID != userID {
		return nil, ErrCouponNotFound
	}
	return c, nil
}
