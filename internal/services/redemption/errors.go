package redemption

import "errors"

// Service errors
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid redemption kind")
	ErrInvalidStatus     = errors.New("invalid redemption status")
	ErrRequestNotFound   = errors.New("redemption request not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrRequestFinalized rejects transitions out of terminal states.
	ErrRequestFinalized = errors.New("redemption request already finalized")
)
