package rule

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// memRepo is an in-memory Repository for service-level tests. It enforces
// the one-active-rule-per-slug constraint the way the partial unique index
// does.
type memRepo struct {
	rules map[uuid.UUID]*RewardRule
}

func newMemRepo() *memRepo {
	return &memRepo{rules: make(map[uuid.UUID]*RewardRule)}
}

func (m *memRepo) hasActiveSlug(slug string, exclude uuid.UUID) bool {
	for _, r := range m.rules {
		if r.Active && r.ItemSlug == slug && r.ID != exclude {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(ctx context.Context, rule *RewardRule) error {
	if rule.Active && m.hasActiveSlug(rule.ItemSlug, rule.ID) {
		return ErrDuplicateActiveSlug
	}
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*RewardRule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRepo) Update(ctx context.Context, rule *RewardRule) error {
	if _, ok := m.rules[rule.ID]; !ok {
		return ErrRuleNotFound
	}
	if rule.Active && m.hasActiveSlug(rule.ItemSlug, rule.ID) {
		return ErrDuplicateActiveSlug
	}
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *memRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r, ok := m.rules[id]
	if !ok {
		return ErrRuleNotFound
	}
	if active && m.hasActiveSlug(r.ItemSlug, id) {
		return ErrDuplicateActiveSlug
	}
	r.Active = active
	return nil
}

func (m *memRepo) List(ctx context.Context, onlyActive bool) ([]RewardRule, error) {
	var out []RewardRule
	for _, r := range m.rules {
		if onlyActive && !r.Active {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func TestCreateNormalizesSlug(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	created, err := svc.Create(ctx, &CreateRuleRequest{
		ItemSlug:          "Chicken Burger",
		RequiredPurchases: 5,
		DiscountPercent:   15,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ItemSlug != "chicken-burger" {
		t.Errorf("expected normalized slug, got %q", created.ItemSlug)
	}
	if !created.Active {
		t.Error("expected rule to default to active")
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	tests := []struct {
		name    string
		req     CreateRuleRequest
		wantErr error
	}{
		{"empty slug", CreateRuleRequest{ItemSlug: " -- ", RequiredPurchases: 5, DiscountPercent: 15}, ErrInvalidSlug},
		{"zero purchases", CreateRuleRequest{ItemSlug: "latte", RequiredPurchases: 0, DiscountPercent: 15}, ErrInvalidPurchases},
		{"negative discount", CreateRuleRequest{ItemSlug: "latte", RequiredPurchases: 5, DiscountPercent: -1}, ErrInvalidDiscount},
		{"discount above hundred", CreateRuleRequest{ItemSlug: "latte", RequiredPurchases: 5, DiscountPercent: 101}, ErrInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateDuplicateActiveSlug(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	req := CreateRuleRequest{ItemSlug: "latte", RequiredPurchases: 5, DiscountPercent: 15}
	if _, err := svc.Create(ctx, &req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, &req); !errors.Is(err, ErrDuplicateActiveSlug) {
		t.Errorf("expected ErrDuplicateActiveSlug, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	created, err := svc.Create(ctx, &CreateRuleRequest{
		ItemSlug:          "latte",
		RequiredPurchases: 5,
		DiscountPercent:   15,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	discount := 20.0
	updated, err := svc.Update(ctx, created.ID, &UpdateRuleRequest{DiscountPercent: &discount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DiscountPercent != 20 {
		t.Errorf("expected discount 20, got %v", updated.DiscountPercent)
	}
	if updated.ItemSlug != "latte" || updated.RequiredPurchases != 5 {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestToggleActive(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	created, err := svc.Create(ctx, &CreateRuleRequest{
		ItemSlug:          "latte",
		RequiredPurchases: 5,
		DiscountPercent:   15,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	toggled, err := svc.ToggleActive(ctx, created.ID)
	if err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if toggled.Active {
		t.Error("expected rule to be deactivated")
	}

	active, err := svc.ListActiveRules(ctx)
	if err != nil {
		t.Fatalf("ListActiveRules: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated rule must leave the active snapshot, got %d rules", len(active))
	}
}
