package balance

import "errors"

// Service errors
var (
	ErrInvalidWallet       = errors.New("invalid wallet address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
