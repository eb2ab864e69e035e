package timer_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"picklist/internal/timer"
)

// memSaver is an in-memory Saver; failErr makes every save fail.
type memSaver struct {
	mu      sync.Mutex
	vals    map[string]int
	failErr error
}

func newMemSaver() *memSaver { return &memSaver{vals: map[string]int{}} }

func (s *memSaver) SaveSeconds(listID string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.vals[listID] = seconds
	return nil
}

func (s *memSaver) LoadSeconds(listID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals[listID], nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestAccumulatorPersistsTicks(t *testing.T) {
	s := newMemSaver()
	a := timer.NewWithInterval("l1", s, time.Millisecond)
	a.Start()
	defer a.Stop()

	waitFor(t, func() bool { return a.Seconds() >= 3 })
	a.Stop()

	got, _ := s.LoadSeconds("l1")
	if got != a.Seconds() {
		t.Fatalf("persisted %d, in-memory %d", got, a.Seconds())
	}
}

func TestAccumulatorResumesAfterRestart(t *testing.T) {
	s := newMemSaver()
	a := timer.NewWithInterval("l1", s, time.Millisecond)
	a.Start()
	waitFor(t, func() bool { return a.Seconds() >= 5 })
	a.Stop()
	before := a.Seconds()

	// A new accumulator on the same list id picks up where the old one
	// left off, never at zero.
	b := timer.NewWithInterval("l1", s, time.Millisecond)
	if b.Seconds() < before {
		t.Fatalf("resumed at %d, want >= %d", b.Seconds(), before)
	}
	b.Start()
	waitFor(t, func() bool { return b.Seconds() > before })
	b.Stop()
}

func TestAccumulatorStartStopIdempotent(t *testing.T) {
	s := newMemSaver()
	a := timer.NewWithInterval("l1", s, time.Millisecond)

	a.Start()
	a.Start()
	if !a.Running() {
		t.Fatal("expected running after Start")
	}
	a.Stop()
	a.Stop()
	if a.Running() {
		t.Fatal("expected stopped after Stop")
	}
}

func TestAccumulatorReset(t *testing.T) {
	s := newMemSaver()
	a := timer.NewWithInterval("l1", s, time.Millisecond)
	a.Start()
	waitFor(t, func() bool { return a.Seconds() >= 2 })
	a.Reset()

	if a.Seconds() != 0 {
		t.Fatalf("expected 0 after reset, got %d", a.Seconds())
	}
	if a.Running() {
		t.Fatal("reset must stop the accumulator")
	}
	if got, _ := s.LoadSeconds("l1"); got != 0 {
		t.Fatalf("reset must persist zero, stored %d", got)
	}
}

func TestAccumulatorSurvivesSaveFailures(t *testing.T) {
	s := newMemSaver()
	s.failErr = errors.New("disk gone")
	a := timer.NewWithInterval("l1", s, time.Millisecond)
	a.Start()
	defer a.Stop()

	// Counting continues even though every persist fails.
	waitFor(t, func() bool { return a.Seconds() >= 3 })
}

func TestAccumulatorMonotonicWhileRunning(t *testing.T) {
	s := newMemSaver()
	a := timer.NewWithInterval("l1", s, time.Millisecond)
	a.Start()
	defer a.Stop()

	prev := a.Seconds()
	for i := 0; i < 50; i++ {
		cur := a.Seconds()
		if cur < prev {
			t.Fatalf("seconds went backwards: %d -> %d", prev, cur)
		}
		prev = cur
		time.Sleep(time.Millisecond)
	}
}
