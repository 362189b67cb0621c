package domain

import "time"

// Role differentiates storefront customers from back-office administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Session describes an issued access token.
type Session struct {
	UserID    string
	Role      Role
	Token     string
	ExpiresAt time.Time
}
