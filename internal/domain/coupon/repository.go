package coupon

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines coupon data access. The Tx variants run inside an
// external transaction so that issuance can be atomic with the ledger update
// that triggered it.
type Repository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, c *DiscountCoupon) error
	HasActiveTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) (bool, error)
	ExpireOverdueTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*DiscountCoupon, error)
	ListEligible(ctx context.Context, userID uuid.UUID, now time.Time) ([]EligibleCoupon, error)
	MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates coupon repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertTx(ctx context.Context, tx *sqlx.Tx, c *DiscountCoupon) error {
	query := `
		INSERT INTO discount_coupons (
			id, user_id, reward_rule_id, code, discount_percent,
			status, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		c.ID, c.UserID, c.RewardRuleID, c.Code, c.DiscountPercent,
		c.Status, c.ExpiresAt, c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "discount_coupons_code_key" {
				return ErrCodeCollision
			}
			return ErrDuplicateActive
		}
		return err
	}
	return nil
}

// HasActiveTx reports whether the user already holds an unexpired active
// coupon for the rule. Runs on the issuance transaction; the partial unique
// index backs this check up across concurrent transactions.
func (r *repository) HasActiveTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM discount_coupons
			WHERE user_id = $1 AND reward_rule_id = $2
			  AND status = 'active' AND expires_at > $3
		)
	`, userID, ruleID, now)
	return exists, err
}

// ExpireOverdueTx transitions the pair's overdue active coupons to the
// explicit expired status. Run before an issuance check so the partial
// unique index on active coupons cannot be blocked by a stale grant.
func (r *repository) ExpireOverdueTx(ctx context.Context, tx *sqlx.Tx, userID, ruleID uuid.UUID, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE discount_coupons
		SET status = 'expired'
		WHERE user_id = $1 AND reward_rule_id = $2
		  AND status = 'active' AND expires_at <= $3
	`, userID, ruleID, now)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*DiscountCoupon, error) {
	var c DiscountCoupon
	err := r.db.GetContext(ctx, &c, `SELECT * FROM discount_coupons WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListEligible(ctx context.Context, userID uuid.UUID, now time.Time) ([]EligibleCoupon, error) {
	query := `
		SELECT c.id, c.user_id, c.reward_rule_id, c.code, c.discount_percent,
			c.status, c.expires_at, c.used_at, c.created_at,
			r.item_slug, r.description AS rule_description
		FROM discount_coupons c
		JOIN reward_rules r ON r.id = c.reward_rule_id
		WHERE c.user_id = $1 AND c.status = 'active' AND c.expires_at > $2
		ORDER BY c.expires_at ASC
	`

	var coupons []EligibleCoupon
	if err := r.db.SelectContext(ctx, &coupons, query, userID, now); err != nil {
		return nil, err
	}
	return coupons, nil
}

// MarkUsed transitions active -> used, re-validating eligibility in the
// same statement. Returns false when no eligible row was updated.
func (r *repository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE discount_coupons
		SET status = 'used', used_at = $2
		WHERE id = $1 AND status = 'active' AND expires_at > $2
	`, id, now)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
