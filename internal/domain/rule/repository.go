package rule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines reward rule data access
type Repository interface {
	Create(ctx context.Context, rule *RewardRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*RewardRule, error)
	Update(ctx context.Context, rule *RewardRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, onlyActive bool) ([]RewardRule, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reward rule repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rule *RewardRule) error {
	query := `
		INSERT INTO reward_rules (
			id, item_slug, required_purchases, discount_percent,
			description, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.ItemSlug, rule.RequiredPurchases, rule.DiscountPercent,
		rule.Description, rule.Active, rule.CreatedAt, rule.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*RewardRule, error) {
	var rule RewardRule
	err := r.db.GetContext(ctx, &rule, `SELECT * FROM reward_rules WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Update(ctx context.Context, rule *RewardRule) error {
	query := `
		UPDATE reward_rules
		SET item_slug = $2, required_purchases = $3, discount_percent = $4,
			description = $5, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.ItemSlug, rule.RequiredPurchases, rule.DiscountPercent, rule.Description,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reward_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE reward_rules SET active = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return mapUniqueViolation(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, onlyActive bool) ([]RewardRule, error) {
	query := `SELECT * FROM reward_rules ORDER BY created_at DESC`
	if onlyActive {
		query = `SELECT * FROM reward_rules WHERE active ORDER BY created_at DESC`
	}

	var rules []RewardRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, err
	}
	return rules, nil
}

// mapUniqueViolation translates the partial unique index on active item slugs
// into the domain sentinel.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateActiveSlug
	}
	return err
}
