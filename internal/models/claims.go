package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload the auth middleware verifies and the
// rest of the system trusts without re-checking.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Wallet string `json:"wallet"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
