//go:build !solution

package pageaccess

import (
	"fmt"
	"strings"
)

// Policy selects the admission rules of a Coordinator.
type Policy int

const (
	// WriterPreference holds back readers that arrive after a writer has
	// started waiting. Readers that were already queued when that writer
	// arrived are admitted first, all together, so neither side can be
	// starved.
	WriterPreference Policy = iota

	// ReaderPreference admits readers whenever no writer is active.
	// Writers wait until no reader is active or waiting and may starve
	// under a steady stream of readers.
	ReaderPreference
)

func (p Policy) String() string {
	switch p {
	case WriterPreference:
		return "writer-preference"
	case ReaderPreference:
		return "reader-preference"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts the String form of a policy, or the short names
// "writer" and "reader".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "writer", "writer-preference":
		return WriterPreference, nil
	case "reader", "reader-preference":
		return ReaderPreference, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// admitFunc reports whether waiter w may become active.
// It is always called with c.mu held.
type admitFunc func(c *Coordinator, w waiter) bool

// rules[policy][role] is the admission predicate for that role.
var rules = [...][numRoles]admitFunc{
	WriterPreference: {
		Reader: func(c *Coordinator, w waiter) bool {
			if c.roles[Writer].active > 0 {
				return false
			}
			oldest, ok := c.roles[Writer].oldest()
			return !ok || w.ticket < oldest.ticket
		},
		Writer: func(c *Coordinator, _ waiter) bool {
			return c.roles[Writer].active == 0 &&
				c.roles[Reader].active == 0 &&
				!c.readersFirst()
		},
	},
	ReaderPreference: {
		Reader: func(c *Coordinator, _ waiter) bool {
			return c.roles[Writer].active == 0
		},
		Writer: func(c *Coordinator, _ waiter) bool {
			return c.roles[Writer].active == 0 &&
				c.roles[Reader].active == 0 &&
				c.roles[Reader].waiting == 0
		},
	},
}

func (p Policy) valid() bool {
	return p >= 0 && int(p) < len(rules)
}
