package clock

import "time"

// Clock supplies the current time. Injecting it lets tests control "now"
// for departure-boundary checks.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock frozen at a settable instant.
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Ensure concrete types implement Clock.
var (
	_ Clock = System{}
	_ Clock = (*Fixed)(nil)
)
