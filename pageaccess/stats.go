//go:build !solution

package pageaccess

import (
	"fmt"
	"time"
)

// Stats is a consistent snapshot of a Coordinator's counters.
type Stats struct {
	ActiveReaders  int
	ActiveWriters  int
	WaitingReaders int
	WaitingWriters int

	// Admitted and Released are cumulative totals indexed by Role.
	Admitted [numRoles]uint64
	Released [numRoles]uint64
}

// Active returns the number of active holders of the given role.
func (s Stats) Active(role Role) int {
	if role == Writer {
		return s.ActiveWriters
	}
	return s.ActiveReaders
}

// Waiting returns the number of goroutines of the given role blocked in Acquire.
func (s Stats) Waiting(role Role) int {
	if role == Writer {
		return s.WaitingWriters
	}
	return s.WaitingReaders
}

// Idle reports whether nobody holds or waits for the resource.
func (s Stats) Idle() bool {
	return s.ActiveReaders == 0 && s.ActiveWriters == 0 &&
		s.WaitingReaders == 0 && s.WaitingWriters == 0
}

// Check verifies the mutual exclusion invariants: at most one writer, and
// never a writer together with readers.
func (s Stats) Check() error {
	switch {
	case s.ActiveReaders < 0 || s.ActiveWriters < 0 ||
		s.WaitingReaders < 0 || s.WaitingWriters < 0:
		return fmt.Errorf("negative counter in %+v", s)
	case s.ActiveWriters > 1:
		return fmt.Errorf("%d writers active at once", s.ActiveWriters)
	case s.ActiveWriters > 0 && s.ActiveReaders > 0:
		return fmt.Errorf("writer active together with %d readers", s.ActiveReaders)
	}
	return nil
}

// EventKind names a state transition of one goroutine.
type EventKind int

const (
	EventWaiting EventKind = iota
	EventAdmitted
	EventReleased
	EventCanceled
)

func (k EventKind) String() string {
	switch k {
	case EventWaiting:
		return "waiting"
	case EventAdmitted:
		return "admitted"
	case EventReleased:
		return "released"
	case EventCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes one transition together with the counters right after it.
type Event struct {
	Kind EventKind
	Role Role
	// Waited is set for EventAdmitted: time spent between entering
	// Acquire and being admitted.
	Waited time.Duration
	Stats  Stats
}

// Observer is told about every transition of a Coordinator.
//
// Observe is called with the Coordinator's lock held, in the order the
// transitions happen. It must be fast and must not call back into the
// Coordinator.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) Observe(e Event) {
	for _, o := range obs {
		o.Observe(e)
	}
}
