// Package lock serialises writers per session. Acquisition never waits: a
// held lock is reported to the caller, which answers SessionBusy.
package lock

import "context"

// Release gives the lock back. It is safe to call more than once.
type Release func()

type Locker interface {
	// TryLock returns ok=false without error when key is already held.
	TryLock(ctx context.Context, key string) (release Release, ok bool, err error)
}
