// Package users manages accounts and roles.
package users

import "time"

// Roles assignable to accounts.
const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// User is an account with role-based access.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
