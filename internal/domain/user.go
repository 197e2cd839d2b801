package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates a stored role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin reports whether the role grants admin access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the domain model for portal accounts.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
