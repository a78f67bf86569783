//go:build !solution

package pageaccess

import (
	"fmt"
	"strings"
)

// Role is the access mode a goroutine asks for.
type Role int

const (
	Reader Role = iota
	Writer

	numRoles = 2
)

func (r Role) String() string {
	switch r {
	case Reader:
		return "reader"
	case Writer:
		return "writer"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid reports whether r is Reader or Writer.
func (r Role) Valid() bool {
	return r == Reader || r == Writer
}

// ParseRole parses "reader" or "writer", ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reader", "r":
		return Reader, nil
	case "writer", "w":
		return Writer, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// MarshalYAML and UnmarshalYAML let roles appear as plain strings in roster files.
func (r Role) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

func (r *Role) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
