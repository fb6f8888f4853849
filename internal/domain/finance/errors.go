package finance

import "errors"

var (
	ErrInvalidType   = errors.New("unknown transaction type")
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	ErrInvalidPeriod = errors.New("period month and year must both be set or both be zero")
)
