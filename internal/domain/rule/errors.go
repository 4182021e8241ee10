package rule

import "errors"

var (
	ErrRuleNotFound        = errors.New("reward rule not found")
	ErrDuplicateActiveSlug = errors.New("another active rule already targets this item slug")
	ErrInvalidSlug         = errors.New("item slug must not be empty")
	ErrInvalidPurchases    = errors.New("required purchases must be at least 1")
	ErrInvalidDiscount     = errors.New("discount percent must be between 0 and 100")
)
