package pricing

import "errors"

// Service errors
var (
	// ErrPriceUnavailable means every resolution tier was exhausted.
	ErrPriceUnavailable  = errors.New("price unavailable")
	ErrVendorUnavailable = errors.New("vendor quote unavailable")
	ErrInvalidPrice      = errors.New("invalid price")
)
