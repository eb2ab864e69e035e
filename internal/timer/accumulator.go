package timer

import (
	"sync"
	"time"

	applog "picklist/internal/log"
)

// Saver persists the per-list elapsed-seconds value. The sqlite timers
// table implements it; tests use an in-memory fake.
type Saver interface {
	SaveSeconds(listID string, seconds int) error
	LoadSeconds(listID string) (int, error)
}

// Accumulator is a stopwatch bound to one list. It counts whole active
// seconds and writes each new value through its Saver so that a
// restarted process resumes from the last persisted count instead of
// zero. A failed save never interrupts the in-memory count.
type Accumulator struct {
	listID string
	saver  Saver

	// tick defaults to one second; tests shorten it.
	tick time.Duration

	mu      sync.Mutex
	seconds int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates an accumulator for listID seeded from the last persisted
// value. A missing or unreadable stored value seeds zero.
func New(listID string, saver Saver) *Accumulator {
	secs, err := saver.LoadSeconds(listID)
	if err != nil || secs < 0 {
		secs = 0
	}
	return &Accumulator{
		listID:  listID,
		saver:   saver,
		tick:    time.Second,
		seconds: secs,
	}
}

// NewWithInterval is New with a custom tick interval, for tests.
func NewWithInterval(listID string, saver Saver, tick time.Duration) *Accumulator {
	a := New(listID, saver)
	a.tick = tick
	return a
}

// Start begins or resumes counting. Calling Start on a running
// accumulator is a no-op.
func (a *Accumulator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stop, a.done)
}

func (a *Accumulator) run(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(a.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			a.mu.Lock()
			a.seconds++
			secs := a.seconds
			a.mu.Unlock()
			a.persist(secs)
		}
	}
}

// Stop halts counting. Calling Stop on a stopped accumulator is a
// no-op. It returns once the tick goroutine has exited.
func (a *Accumulator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	stop, done := a.stop, a.done
	a.mu.Unlock()

	close(stop)
	<-done
}

// Reset stops the accumulator and persists a zero count.
func (a *Accumulator) Reset() {
	a.Stop()
	a.mu.Lock()
	a.seconds = 0
	a.mu.Unlock()
	a.persist(0)
}

// Seconds returns the current elapsed count.
func (a *Accumulator) Seconds() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seconds
}

// Running reports whether the accumulator is currently counting.
func (a *Accumulator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Flush persists the current count outside the tick cycle.
func (a *Accumulator) Flush() {
	a.persist(a.Seconds())
}

func (a *Accumulator) persist(secs int) {
	if err := a.saver.SaveSeconds(a.listID, secs); err != nil {
		applog.Error(nil, "timer.persist", err, map[string]any{"list_id": a.listID, "seconds": secs})
	}
}
