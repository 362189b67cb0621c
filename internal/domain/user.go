package domain

import "time"

// User is a storefront account. Administrators are users with RoleAdmin.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may drive order and ticket workflows.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary returns the owner fields exposed in listings.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the owner information attached to orders and tickets.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}
