//go:build !solution

package pageaccess

import "fmt"

// ContractViolation is the panic value for misuse of a Coordinator:
// releasing a role that is not held, or passing an unknown role.
type ContractViolation struct {
	Op    string
	Role  Role
	Stats Stats
}

func (e *ContractViolation) Error() string {
	if !e.Role.Valid() {
		return fmt.Sprintf("pageaccess: %s with invalid %v", e.Op, e.Role)
	}
	return fmt.Sprintf("pageaccess: %s(%v) without a matching Acquire (active readers %d, writers %d)",
		e.Op, e.Role, e.Stats.ActiveReaders, e.Stats.ActiveWriters)
}

func (c *Coordinator) violation(op string, role Role) *ContractViolation {
	return &ContractViolation{Op: op, Role: role, Stats: c.snapshot()}
}
