package coupon

import "errors"

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrNotEligible     = errors.New("coupon is expired or not eligible for redemption")
	ErrDuplicateActive = errors.New("user already holds an active coupon for this rule")
	ErrCodeCollision   = errors.New("coupon code already exists")
)
