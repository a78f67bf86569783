package pageaccess

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// trace records every event a Coordinator emits.
type trace struct {
	mu     sync.Mutex
	events []Event
}

func (tr *trace) Observe(e Event) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, e)
}

func (tr *trace) snapshot() []Event {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]Event(nil), tr.events...)
}

// admissions returns "reader"/"writer" for every EventAdmitted in order.
func (tr *trace) admissions() []string {
	var out []string
	for _, e := range tr.snapshot() {
		if e.Kind == EventAdmitted {
			out = append(out, e.Role.String())
		}
	}
	return out
}

func waitStats(t *testing.T, c *Coordinator, cond func(Stats) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return cond(c.Stats())
	}, 5*time.Second, time.Millisecond)
}

// contractPanic runs f and returns the *ContractViolation it panicked with.
func contractPanic(t *testing.T, f func()) (cv *ContractViolation) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		var ok bool
		cv, ok = r.(*ContractViolation)
		require.True(t, ok, fmt.Sprintf("unexpected panic value %v", r))
	}()
	f()
	return nil
}
