package shop

import "errors"

var (
	ErrItemNotFound      = errors.New("store item not found")
	ErrItemInactive      = errors.New("store item is not active")
	ErrInvalidQuantity   = errors.New("purchase quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrInvalidTransition = errors.New("invalid purchase status transition")
)
