// Package clock lets timer-driven code (the action store's persist
// debounce) run against a fake time source in tests.
package clock

import "time"

// Clock is the subset of the time package the app schedules work with.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f after d elapses. The returned Timer can cancel the
	// pending call. A fake clock calls f synchronously from Advance.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable scheduled call.
type Timer struct {
	stop func() bool
}

// Stop prevents the call from firing. It reports whether the call was
// still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stop: t.Stop}
}
