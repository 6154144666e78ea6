package tokenop

import "errors"

// Service errors
var (
	// ErrAmbiguousAmount means the caller supplied both or neither of
	// the gram and fiat amounts; exactly one is required.
	ErrAmbiguousAmount     = errors.New("exactly one of grams or fiat amount is required")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
