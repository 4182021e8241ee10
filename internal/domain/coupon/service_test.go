package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name            string
		discountPercent float64
		subtotalCents   int64
		want            int64
	}{
		{"fifteen percent", 15, 1000, 150},
		{"rounds half up", 12.5, 999, 125},
		{"rounds down", 10, 1004, 100},
		{"full discount", 100, 2550, 2550},
		{"zero discount", 0, 2550, 0},
		{"small subtotal", 15, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.discountPercent, tt.subtotalCents); got != tt.want {
				t.Errorf("Apply(%v, %d) = %d, want %d", tt.discountPercent, tt.subtotalCents, got, tt.want)
			}
		})
	}
}

func TestIsEligible(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		coupon DiscountCoupon
		want   bool
	}{
		{"active and unexpired", DiscountCoupon{Status: StatusActive, ExpiresAt: now.Add(time.Hour)}, true},
		{"active but expired", DiscountCoupon{Status: StatusActive, ExpiresAt: now.Add(-time.Minute)}, false},
		{"used", DiscountCoupon{Status: StatusUsed, ExpiresAt: now.Add(time.Hour)}, false},
		{"explicitly expired", DiscountCoupon{Status: StatusExpired, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.IsEligible(now); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

// memRepo is an in-memory Repository for service-level tests. The Tx
// variants are unused by the service and left unimplemented.
type memRepo struct {
	coupons map[uuid.UUID]*DiscountCoupon
}

func newMemRepo() *memRepo {
	return &memRepo{coupons: make(map[uuid.UUID]*DiscountCoupon)}
}

func (m *memRepo) put(c DiscountCoupon) uuid.UUID {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.coupons[c.ID] = &c
	return c.ID
}

func (m *memRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, c *DiscountCoupon) error {
	panic("not used by service tests")
}

func (m *memRepo) HasActiveTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) (bool, error) {
	panic("not used by service tests")
}

func (m *memRepo) ExpireOverdueTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) error {
	panic("not used by service tests")
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*DiscountCoupon, error) {
	c, ok := m.coupons[id]
	if !ok {
		return nil, ErrCouponNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memRepo) ListEligible(ctx context.Context, userID uuid.UUID, now time.Time) ([]EligibleCoupon, error) {
	var out []EligibleCoupon
	for _, c := range m.coupons {
		if c.UserID == userID && c.IsEligible(now) {
			out = append(out, EligibleCoupon{DiscountCoupon: *c})
		}
	}
	return out, nil
}

func (m *memRepo) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	c, ok := m.coupons[id]
	if !ok || c.Status != StatusActive || !c.ExpiresAt.After(now) {
		return false, nil
	}
	c.Status = StatusUsed
	return true, nil
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	userID := uuid.New()

	id := repo.put(DiscountCoupon{
		UserID:          userID,
		DiscountPercent: 15,
		Status:          StatusActive,
		ExpiresAt:       time.Now().Add(time.Hour),
	})

	c, discount, err := svc.ApplyCoupon(ctx, userID, id, 1000)
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if discount != 150 {
		t.Errorf("expected discount 150, got %d", discount)
	}
	if c.Status != StatusActive {
		t.Errorf("apply must not consume the coupon, status = %q", c.Status)
	}
}

func TestApplyCouponExpired(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	userID := uuid.New()

	id := repo.put(DiscountCoupon{
		UserID:          userID,
		DiscountPercent: 15,
		Status:          StatusActive,
		ExpiresAt:       time.Now().Add(-time.Minute),
	})

	if _, _, err := svc.ApplyCoupon(ctx, userID, id, 1000); !errors.Is(err, ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}
}

func TestApplyCouponForeignUser(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	id := repo.put(DiscountCoupon{
		UserID:          uuid.New(),
		DiscountPercent: 15,
		Status:          StatusActive,
		ExpiresAt:       time.Now().Add(time.Hour),
	})

	// Someone else's coupon must look like a missing one, not a forbidden one.
	if _, _, err := svc.ApplyCoupon(ctx, uuid.New(), id, 1000); !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	userID := uuid.New()

	id := repo.put(DiscountCoupon{
		UserID:          userID,
		DiscountPercent: 20,
		Status:          StatusActive,
		ExpiresAt:       time.Now().Add(time.Hour),
	})

	c, err := svc.Redeem(ctx, userID, id)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if c.Status != StatusUsed {
		t.Errorf("expected status used, got %q", c.Status)
	}

	// A duplicate call from checkout must not fail the order.
	c, err = svc.Redeem(ctx, userID, id)
	if err != nil {
		t.Fatalf("repeated Redeem: %v", err)
	}
	if c.Status != StatusUsed {
		t.Errorf("expected idempotent redeem to report used, got %q", c.Status)
	}
}

func TestRedeemExpired(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	userID := uuid.New()

	id := repo.put(DiscountCoupon{
		UserID:          userID,
		DiscountPercent: 20,
		Status:          StatusActive,
		ExpiresAt:       time.Now().Add(-time.Minute),
	})

	if _, err := svc.Redeem(ctx, userID, id); !errors.Is(err, ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}
}
