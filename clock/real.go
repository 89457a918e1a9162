package clock

import (
	"sync"
	"time"
)

type realEvent struct {
	fn     func()
	timer  *time.Timer
	stopCh chan struct{} // closed to stop a repeating event's ticker goroutine
}

// Real is a Clock backed by the runtime timers. Callbacks are not run on the
// timer goroutines. They are queued to a single dispatcher so they never
// interleave, and a cancelled event is skipped even if its timer already
// fired.
type Real struct {
	start time.Time

	mu     sync.Mutex
	last   time.Duration
	nextID EventID
	events map[EventID]*realEvent

	queue     chan EventID
	doneCh    chan struct{}
	closeOnce sync.Once
}

func NewReal() *Real {
	r := &Real{
		start:  time.Now(),
		events: make(map[EventID]*realEvent),
		queue:  make(chan EventID, 64),
		doneCh: make(chan struct{}),
	}
	go r.dispatch()
	return r
}

// Now reads the monotonic clock. It never reports less than it did before.
func (r *Real) Now() time.Duration {
	now := time.Since(r.start).Truncate(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	if now < r.last {
		return r.last
	}
	r.last = now
	return now
}

func (r *Real) ScheduleOnce(fn func(), delay time.Duration) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	ev := &realEvent{fn: fn}
	r.events[id] = ev
	ev.timer = time.AfterFunc(normDelay(delay), func() { r.enqueue(id) })
	return id
}

func (r *Real) ScheduleRepeating(fn func(), period time.Duration) EventID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	ev := &realEvent{fn: fn, stopCh: make(chan struct{})}
	r.events[id] = ev

	ticker := time.NewTicker(normPeriod(period))
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.enqueue(id)
			case <-ev.stopCh:
				return
			case <-r.doneCh:
				return
			}
		}
	}()
	return id
}

func (r *Real) Cancel(id EventID) {
	r.mu.Lock()
	ev, ok := r.events[id]
	delete(r.events, id)
	r.mu.Unlock()
	if ok {
		ev.stop()
	}
}

// Close cancels every pending event and stops the dispatcher. Events
// scheduled afterwards never fire.
func (r *Real) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		events := r.events
		r.events = make(map[EventID]*realEvent)
		r.mu.Unlock()
		for _, ev := range events {
			ev.stop()
		}
		close(r.doneCh)
	})
}

func (r *Real) enqueue(id EventID) {
	select {
	case r.queue <- id:
	case <-r.doneCh:
	}
}

func (r *Real) dispatch() {
	for {
		select {
		case id := <-r.queue:
			r.mu.Lock()
			ev, ok := r.events[id]
			if ok && ev.stopCh == nil {
				delete(r.events, id)
			}
			r.mu.Unlock()
			if ok {
				ev.fn()
			}
		case <-r.doneCh:
			return
		}
	}
}

func (ev *realEvent) stop() {
	if ev.timer != nil {
		ev.timer.Stop()
	}
	if ev.stopCh != nil {
		close(ev.stopCh)
	}
}
