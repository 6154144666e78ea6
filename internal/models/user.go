package models

import (
	"time"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a custodial account keyed by its normalized wallet address.
// Users are created lazily on first interaction; a user row implies
// both balance rows exist (repaired on read if missing).
type User struct {
	ID     uint   `gorm:"primarykey"`
	Wallet string `gorm:"uniqueIndex;not null"` // lower-cased hex address
	Role   string `gorm:"default:'user'"`
	// PasswordHash is only set for operator accounts that log in directly.
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
