package models

import "strings"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
