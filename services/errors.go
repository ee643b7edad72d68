package services

import (
	"errors"
	"fmt"
)

// Business-rule violations are expected outcomes and map to 400.
var (
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrProductUnavailable = errors.New("product inactive or out of stock")
	ErrAlreadyProcessed   = errors.New("already processed")
)

// Not-found conditions map to 404.
var (
	ErrOpticianNotFound       = errors.New("optician not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrLoyaltyProductNotFound = errors.New("loyalty product not found")
	ErrRedemptionNotFound     = errors.New("redemption not found")
	ErrOrderItemNotFound      = errors.New("order item not found")
)

// InsufficientStockError carries the conflicting quantities so the
// caller can render an actionable message.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// ValidationError marks malformed input rather than a business-rule
// conflict; both map to 400 but the message shape differs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
