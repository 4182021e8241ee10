package rule

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles reward rule business logic
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService creates rule service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create validates and stores a new reward rule.
func (s *Service) Create(ctx context.Context, req *CreateRuleRequest) (*RewardRule, error) {
	slug := NormalizeSlug(req.ItemSlug)
	if err := validateFields(slug, req.RequiredPurchases, req.DiscountPercent); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	rule := &RewardRule{
		ID:                uuid.New(),
		ItemSlug:          slug,
		RequiredPurchases: req.RequiredPurchases,
		DiscountPercent:   req.DiscountPercent,
		Description:       sql.NullString{String: req.Description, Valid: req.Description != ""},
		Active:            active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().
		Str("rule_id", rule.ID.String()).
		Str("item_slug", rule.ItemSlug).
		Int("required_purchases", rule.RequiredPurchases).
		Float64("discount_percent", rule.DiscountPercent).
		Msg("reward rule created")
	return rule, nil
}

// Update applies the non-nil fields of req to an existing rule. Coupons
// already issued keep the discount percent they were minted with.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRuleRequest) (*RewardRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ItemSlug != nil {
		rule.ItemSlug = NormalizeSlug(*req.ItemSlug)
	}
	if req.RequiredPurchases != nil {
		rule.RequiredPurchases = *req.RequiredPurchases
	}
	if req.DiscountPercent != nil {
		rule.DiscountPercent = *req.DiscountPercent
	}
	if req.Description != nil {
		rule.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}

	if err := validateFields(rule.ItemSlug, rule.RequiredPurchases, rule.DiscountPercent); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().Str("rule_id", rule.ID.String()).Str("item_slug", rule.ItemSlug).Msg("reward rule updated")
	return rule, nil
}

// Delete removes a rule from the catalog. Ledger entries keep their counts
// and issued coupons stay redeemable; only future issuance stops.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)

	log.Info().Str("rule_id", id.String()).Msg("reward rule deleted")
	return nil
}

// ToggleActive flips a rule between active and inactive.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (*RewardRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, id, !rule.Active); err != nil {
		return nil, err
	}
	rule.Active = !rule.Active
	s.cache.Invalidate(ctx)

	log.Info().Str("rule_id", id.String()).Bool("active", rule.Active).Msg("reward rule toggled")
	return rule, nil
}

// List returns the catalog, optionally filtered to active rules.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]RewardRule, error) {
	return s.repo.List(ctx, onlyActive)
}

// ListActiveRules returns the active-rule snapshot the reward engine works
// from, cache-first. One snapshot is fetched per processed order so the
// decision stays consistent across all of the order's items.
func (s *Service) ListActiveRules(ctx context.Context) ([]RewardRule, error) {
	if rules, ok := s.cache.GetActive(ctx); ok {
		return rules, nil
	}

	rules, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	s.cache.SetActive(ctx, rules)
	return rules, nil
}

func validateFields(slug string, requiredPurchases int, discountPercent float64) error {
	if slug == "" {
		return ErrInvalidSlug
	}
	if requiredPurchases < 1 {
		return ErrInvalidPurchases
	}
	if discountPercent < 0 || discountPercent > 100 {
		return ErrInvalidDiscount
	}
	return nil
}
