package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleBuyer  Role = "Buyer"
	RoleSeller Role = "Seller"
)

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	default:
		return false
	}
}

// ParseRole accepts the role names case-insensitively ("buyer", "Seller").
func ParseRole(s string) (Role, error) {
	switch {
	case strings.EqualFold(s, string(RoleBuyer)):
		return RoleBuyer, nil
	case strings.EqualFold(s, string(RoleSeller)):
		return RoleSeller, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}
