package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultMaxSteps bounds RunToIdle.
const DefaultMaxSteps = 10000

var (
	ErrNegativeAdvance = errors.New("clock: advance requires a non-negative duration")
	ErrRunaway         = errors.New("clock: run to idle exceeded max steps, possible uncancelled repeating event")
)

type mockEvent struct {
	id     EventID
	due    time.Duration
	period time.Duration // zero for one-shot events
	fn     func()
}

// Mock is a virtual clock. Time only moves on Advance, AdvanceToNext and
// RunToIdle, and every due callback runs on the caller's goroutine before
// those return.
type Mock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID EventID
	events map[EventID]*mockEvent
}

func NewMock() *Mock {
	return &Mock{events: make(map[EventID]*mockEvent)}
}

func (m *Mock) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) ScheduleOnce(fn func(), delay time.Duration) EventID {
	return m.schedule(fn, normDelay(delay), 0)
}

func (m *Mock) ScheduleRepeating(fn func(), period time.Duration) EventID {
	p := normPeriod(period)
	return m.schedule(fn, p, p)
}

func (m *Mock) schedule(fn func(), delay, period time.Duration) EventID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.events[id] = &mockEvent{id: id, due: m.now + delay, period: period, fn: fn}
	return id
}

func (m *Mock) Cancel(id EventID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
}

// Pending returns the number of events still waiting to fire.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// Advance moves the clock forward by d, firing every event that comes due on
// the way in (due, id) order. Callbacks may schedule or cancel events, and
// anything they schedule inside the window fires in the same call.
func (m *Mock) Advance(d time.Duration) error {
	if d < 0 {
		return ErrNegativeAdvance
	}
	m.mu.Lock()
	target := m.now + normDelay(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		ev := m.earliest(target)
		if ev == nil {
			m.now = target
			m.mu.Unlock()
			return nil
		}
		m.now = ev.due
		m.mu.Unlock()

		ev.fn()

		m.mu.Lock()
		if m.events[ev.id] == ev {
			if ev.period > 0 {
				// previous due + period, not now + period, so there's no drift.
				ev.due += ev.period
			} else {
				delete(m.events, ev.id)
			}
		}
		m.mu.Unlock()
	}
}

// AdvanceToNext jumps to the earliest pending event and fires everything due
// at that instant. It returns how far the clock moved, or false when nothing
// is pending.
func (m *Mock) AdvanceToNext() (time.Duration, bool) {
	m.mu.Lock()
	ev := m.earliest(-1)
	if ev == nil {
		m.mu.Unlock()
		return 0, false
	}
	delta := max(0, ev.due-m.now)
	m.mu.Unlock()

	// delta is never negative.
	_ = m.Advance(delta)
	return delta, true
}

// RunToIdle fires events until none are left, giving up after
// DefaultMaxSteps.
func (m *Mock) RunToIdle() error {
	return m.RunToIdleSteps(DefaultMaxSteps)
}

func (m *Mock) RunToIdleSteps(maxSteps int) error {
	for steps := 0; m.Pending() > 0; steps++ {
		if steps >= maxSteps {
			return fmt.Errorf("%w (%d)", ErrRunaway, maxSteps)
		}
		m.AdvanceToNext()
	}
	return nil
}

// earliest returns the pending event with the lowest (due, id) whose due time
// is not after limit. A negative limit means no limit. Callers hold m.mu.
func (m *Mock) earliest(limit time.Duration) *mockEvent {
	var next *mockEvent
	for _, ev := range m.events {
		if limit >= 0 && ev.due > limit {
			continue
		}
		if next == nil || ev.due < next.due || (ev.due == next.due && ev.id < next.id) {
			next = ev
		}
	}
	return next
}
