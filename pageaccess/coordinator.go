//go:build !solution

// Package pageaccess coordinates readers and writers of a single shared
// resource.
//
// Any number of readers may hold the resource at once; a writer holds it
// alone. Goroutines call Acquire with their Role, use the resource, then
// call Release with the same Role. Which waiter proceeds next is decided by
// the Coordinator's Policy.
package pageaccess

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/jonboulle/clockwork"
)

// waiter is a goroutine blocked in Acquire.
//
// ticket orders readers against writers: a writer takes the next ticket on
// arrival, a reader takes the current one. So a reader precedes a writer
// iff reader.ticket < writer.ticket. seq only makes waiters unique.
type waiter struct {
	ticket uint64
	seq    uint64
}

func waiterLess(a, b waiter) bool {
	if a.ticket != b.ticket {
		return a.ticket < b.ticket
	}
	return a.seq < b.seq
}

type roleState struct {
	active   int
	waiting  int
	admitted uint64
	released uint64

	queue *btree.BTreeG[waiter]
	cond  *sync.Cond
}

// oldest returns the earliest waiter of this role.
func (st *roleState) oldest() (waiter, bool) {
	return st.queue.Min()
}

// A Coordinator guards access to one shared resource.
//
// All counters live under one mutex; each role waits on its own condition
// variable bound to that mutex. A Coordinator must not be copied after
// first use.
type Coordinator struct {
	mu    sync.Mutex
	roles [numRoles]roleState

	tickets uint64
	seq     uint64

	policy   Policy
	observer Observer
	clock    clockwork.Clock
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy sets the admission policy. The default is WriterPreference.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

// WithObserver installs o to be told about every state transition.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// WithClock sets the clock used to measure wait durations.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// New creates *Coordinator with all counters at zero.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		policy: WriterPreference,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.policy.valid() {
		panic("pageaccess: invalid policy " + c.policy.String())
	}
	for i := range c.roles {
		c.roles[i].queue = btree.NewG[waiter](8, waiterLess)
		c.roles[i].cond = sync.NewCond(&c.mu)
	}
	return c
}

// Policy returns the admission policy of c.
func (c *Coordinator) Policy() Policy {
	return c.policy
}

// Acquire blocks until the policy admits the caller in the given role.
//
// On return the caller holds the resource: shared with other readers if
// role is Reader, exclusively if role is Writer. Every Acquire must be
// paired with a Release of the same role.
func (c *Coordinator) Acquire(role Role) {
	_ = c.AcquireContext(context.Background(), role)
}

// AcquireContext is like Acquire but gives up when ctx is done.
//
// If ctx is already done on entry, AcquireContext returns ctx.Err() without
// queueing. If ctx ends while waiting, the caller leaves the queue and the
// error is returned; the caller then holds nothing and must not Release.
func (c *Coordinator) AcquireContext(ctx context.Context, role Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state("Acquire", role)
	start := c.clock.Now()

	if role == Writer {
		c.tickets++
	}
	c.seq++
	w := waiter{ticket: c.tickets, seq: c.seq}
	st.queue.ReplaceOrInsert(w)
	st.waiting++
	c.emit(EventWaiting, role, 0)

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			c.mu.Lock()
			st.cond.Broadcast()
			c.mu.Unlock()
		})
		defer stop()
	}

	admit := rules[c.policy][role]
	for !admit(c, w) {
		if err := ctx.Err(); err != nil {
			c.abandon(role, w)
			return err
		}
		st.cond.Wait()
	}

	st.queue.Delete(w)
	st.waiting--
	st.active++
	st.admitted++
	c.emit(EventAdmitted, role, c.clock.Since(start))
	return nil
}

// Release gives up the resource held in the given role and wakes the
// waiters that may now proceed.
//
// It panics with *ContractViolation if no slot of that role is held.
func (c *Coordinator) Release(role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state("Release", role)
	if st.active == 0 {
		panic(c.violation("Release", role))
	}
	st.active--
	st.released++
	c.emit(EventReleased, role, 0)

	readers, writers := &c.roles[Reader], &c.roles[Writer]
	switch role {
	case Writer:
		if c.readersNext() {
			readers.cond.Broadcast()
		} else if writers.waiting > 0 {
			writers.cond.Signal()
		}
	case Reader:
		if readers.active == 0 && writers.waiting > 0 && !c.readersNext() {
			writers.cond.Signal()
		}
	}
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// readersNext reports whether queued readers go before any queued writer.
func (c *Coordinator) readersNext() bool {
	if c.policy == ReaderPreference {
		return c.roles[Reader].waiting > 0
	}
	return c.readersFirst()
}

// readersFirst reports whether some queued reader arrived before every
// queued writer.
func (c *Coordinator) readersFirst() bool {
	r, ok := c.roles[Reader].oldest()
	if !ok {
		return false
	}
	w, ok := c.roles[Writer].oldest()
	return !ok || r.ticket < w.ticket
}

// abandon removes a cancelled waiter from the queue.
func (c *Coordinator) abandon(role Role, w waiter) {
	st := &c.roles[role]
	st.queue.Delete(w)
	st.waiting--
	c.emit(EventCanceled, role, 0)

	// Уход ждущего может открыть дорогу кому угодно: пусть все перепроверят.
	c.roles[Reader].cond.Broadcast()
	c.roles[Writer].cond.Broadcast()
}

func (c *Coordinator) state(op string, role Role) *roleState {
	if !role.Valid() {
		panic(c.violation(op, role))
	}
	return &c.roles[role]
}

func (c *Coordinator) emit(kind EventKind, role Role, waited time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.Observe(Event{
		Kind:   kind,
		Role:   role,
		Waited: waited,
		Stats:  c.snapshot(),
	})
}

func (c *Coordinator) snapshot() Stats {
	r, w := &c.roles[Reader], &c.roles[Writer]
	return Stats{
		ActiveReaders:  r.active,
		ActiveWriters:  w.active,
		WaitingReaders: r.waiting,
		WaitingWriters: w.waiting,
		Admitted:       [numRoles]uint64{Reader: r.admitted, Writer: w.admitted},
		Released:       [numRoles]uint64{Reader: r.released, Writer: w.released},
	}
}
