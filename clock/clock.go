// Package clock contains the time source the game runs on.
// Real is backed by the host timers, Mock only moves when told to.
package clock

import "time"

// EventID identifies a scheduled callback. The zero value is never issued.
type EventID uint64

type Clock interface {
	// Now returns the time elapsed since the clock was created, in whole
	// milliseconds. It never goes backwards.
	Now() time.Duration
	// ScheduleOnce runs fn once, at least delay from now.
	ScheduleOnce(fn func(), delay time.Duration) EventID
	// ScheduleRepeating runs fn every period, starting at now + period.
	ScheduleRepeating(fn func(), period time.Duration) EventID
	// Cancel drops a pending event. Unknown or fired ids are ignored.
	Cancel(id EventID)
}

// normDelay floors d to whole milliseconds and never returns less than zero.
func normDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Millisecond)
}

// normPeriod is like normDelay but with a 1ms floor. A zero period would
// reschedule forever at the same instant.
func normPeriod(d time.Duration) time.Duration {
	d = normDelay(d)
	if d < time.Millisecond {
		return time.Millisecond
	}
	return d
}
