package dispatch

import "time"

// Clock schedules delayed callbacks. The dispatcher takes one so tests can
// drive time by hand (see package dispatchtest).
type Clock interface {
	Now() time.Time

	// AfterFunc runs f after d. The returned stop func cancels it and
	// reports whether it did so before f started.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realClock struct{}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
