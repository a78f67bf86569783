//go:build !solution

package rwmutex

import (
	"context"
	"sync"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// A RWMutex is a reader/writer mutual exclusion lock.
// The lock can be held by an arbitrary number of readers or a single writer.
//
// If a goroutine holds a RWMutex for reading and another goroutine might
// call Lock, no goroutine should expect to be able to acquire a read lock
// until the initial read lock is released. In particular, this prohibits
// recursive read locking. This is to ensure that the lock eventually becomes
// available; a blocked Lock call excludes new readers from acquiring the
// lock.
type RWMutex struct {
	c *pageaccess.Coordinator
}

// New creates *RWMutex.
func New(opts ...pageaccess.Option) *RWMutex {
	return &RWMutex{c: pageaccess.New(opts...)}
}

// RLock locks rw for reading.
//
// It should not be used for recursive read locking; a blocked Lock
// call excludes new readers from acquiring the lock. See the
// documentation on the RWMutex type.
func (rw *RWMutex) RLock() {
	rw.c.Acquire(pageaccess.Reader)
}

// RLockContext is like RLock but gives up when ctx is done.
func (rw *RWMutex) RLockContext(ctx context.Context) error {
	return rw.c.AcquireContext(ctx, pageaccess.Reader)
}

// RUnlock undoes a single RLock call;
// it does not affect other simultaneous readers.
// It is a run-time error if rw is not locked for reading
// on entry to RUnlock.
func (rw *RWMutex) RUnlock() {
	rw.c.Release(pageaccess.Reader)
}

// Lock locks rw for writing.
// If the lock is already locked for reading or writing,
// Lock blocks until the lock is available.
func (rw *RWMutex) Lock() {
	rw.c.Acquire(pageaccess.Writer)
}

// LockContext is like Lock but gives up when ctx is done.
func (rw *RWMutex) LockContext(ctx context.Context) error {
	return rw.c.AcquireContext(ctx, pageaccess.Writer)
}

// Unlock unlocks rw for writing. It is a run-time error if rw is
// not locked for writing on entry to Unlock.
//
// As with Mutexes, a locked RWMutex is not associated with a particular
// goroutine. One goroutine may RLock (Lock) a RWMutex and then
// arrange for another goroutine to RUnlock (Unlock) it.
func (rw *RWMutex) Unlock() {
	rw.c.Release(pageaccess.Writer)
}

// RLocker returns a sync.Locker that calls RLock and RUnlock.
func (rw *RWMutex) RLocker() sync.Locker {
	return (*rlocker)(rw)
}

// Stats exposes the counters of the underlying coordinator.
func (rw *RWMutex) Stats() pageaccess.Stats {
	return rw.c.Stats()
}

type rlocker RWMutex

func (r *rlocker) Lock()   { (*RWMutex)(r).RLock() }
func (r *rlocker) Unlock() { (*RWMutex)(r).RUnlock() }

var _ sync.Locker = (*RWMutex)(nil)
