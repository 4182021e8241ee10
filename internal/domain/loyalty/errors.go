package loyalty

import "errors"

var (
	ErrMissingUser     = errors.New("order has no resolved user identity")
	ErrNoItems         = errors.New("order has no line items")
	ErrInvalidQuantity = errors.New("line item quantity must be at least 1")
	ErrUnresolvedItem  = errors.New("line item has neither slug nor name")
)
