package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"picklist/internal/domain"
	"picklist/internal/imaging"
	applog "picklist/internal/log"
	"picklist/internal/parser"
	"picklist/internal/store"
	"picklist/internal/timer"
)

// LifecycleService owns the picking-list state machine: import creates
// pending lists, pickers claim them, item toggles drive completion
// detection, and a background flush keeps the stored elapsed time from
// lagging more than one flush interval behind the stopwatch.
//
// At most one list is actively picked per service instance; starting a
// second list detaches the first.
type LifecycleService struct {
	Store      store.Store
	Timers     timer.Saver
	Recognizer Recognizer

	// OnComplete fires exactly once per list when its last item is
	// checked off. May be nil.
	OnComplete func(listID string, seconds int)

	// FlushInterval bounds how often elapsed time is written to the
	// Store while picking. TickInterval is the stopwatch tick; tests
	// shorten both.
	FlushInterval time.Duration
	TickInterval  time.Duration

	mu    sync.Mutex
	cur   *picking
	fired map[string]bool
}

// picking is the one actively picked list of this session.
type picking struct {
	listID string
	acc    *timer.Accumulator
	cancel context.CancelFunc
}

func NewLifecycleService(st store.Store, timers timer.Saver, rec Recognizer) *LifecycleService {
	return &LifecycleService{
		Store:         st,
		Timers:        timers,
		Recognizer:    rec,
		FlushInterval: 15 * time.Second,
		TickInterval:  time.Second,
		fired:         map[string]bool{},
	}
}

// ImportText parses raw sheet text and creates a pending list. Zero
// parsed items is a user-facing error and creates nothing.
func (s *LifecycleService) ImportText(name, raw string) (*domain.List, error) {
	items := parser.Parse(raw)
	if len(items) == 0 {
		return nil, domain.ErrParseEmpty
	}
	l, err := s.Store.CreateList(name, items, 0)
	if err != nil {
		return nil, err
	}
	applog.Audit(nil, "list.imported", map[string]any{"list_id": l.ID, "name": name, "items": len(items)})
	return l, nil
}

// ImportScan normalizes a sheet photo, runs the OCR collaborator and
// imports the recognized text. An empty name becomes "Scanned List
// <date>".
func (s *LifecycleService) ImportScan(ctx context.Context, name string, scan io.Reader) (*domain.List, error) {
	img, err := imaging.Normalize(scan)
	if err != nil {
		return nil, err
	}
	text, err := s.Recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("scan recognition failed: %w", err)
	}
	if name == "" {
		name = "Scanned List " + time.Now().Format("2006-01-02")
	}
	return s.ImportText(name, text)
}

// StartPicking claims a list for userCode, attaches the stopwatch and
// starts the periodic durability flush. A list held in progress by a
// different picker fails with domain.ErrListLocked.
func (s *LifecycleService) StartPicking(listID, userCode string) (*domain.ActiveList, error) {
	l, err := s.Store.MarkInProgress(listID, userCode)
	if err != nil {
		return nil, err
	}

	// The stopwatch resumes from whichever is further along: the fast
	// local timer value or the list's stored time. Keeping the timer key
	// at least at the stored value makes the accumulator a live view of
	// the list's time.
	if persisted, err := s.Timers.LoadSeconds(listID); err != nil || persisted < l.AccumulatedSeconds {
		if serr := s.Timers.SaveSeconds(listID, l.AccumulatedSeconds); serr != nil {
			applog.Error(nil, "picking.timer.seed", serr, map[string]any{"list_id": listID})
		}
	}

	s.mu.Lock()
	s.detachLocked()
	acc := timer.NewWithInterval(listID, s.Timers, s.tick())
	acc.Start()
	ctx, cancel := context.WithCancel(context.Background())
	s.cur = &picking{listID: listID, acc: acc, cancel: cancel}
	s.mu.Unlock()

	go s.flushLoop(ctx, listID, acc)

	items, err := s.Store.ActiveList(userCode)
	if err != nil {
		return nil, err
	}
	if items == nil {
		// MarkInProgress succeeded, so the list exists; fall back to the
		// header we already have.
		return &domain.ActiveList{List: *l}, nil
	}
	return items, nil
}

// flushLoop writes the stopwatch value through to the Store at a coarse
// interval so elapsed time survives a kill between item toggles. A
// failed write is retried on the next natural tick, never in a loop.
func (s *LifecycleService) flushLoop(ctx context.Context, listID string, acc *timer.Accumulator) {
	t := time.NewTicker(s.flush())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Store.SetAccumulatedSeconds(listID, acc.Seconds()); err != nil {
				applog.Error(nil, "picking.flush", err, map[string]any{"list_id": listID})
			}
		}
	}
}

// StopPicking detaches the current list: no new ticks or flushes are
// scheduled, and the final count is written through once, best-effort.
func (s *LifecycleService) StopPicking() {
	s.mu.Lock()
	cur := s.cur
	s.detachLocked()
	s.mu.Unlock()

	if cur != nil {
		cur.acc.Flush()
		if err := s.Store.SetAccumulatedSeconds(cur.listID, cur.acc.Seconds()); err != nil {
			applog.Error(nil, "picking.detach.flush", err, map[string]any{"list_id": cur.listID})
		}
	}
}

// detachLocked stops the current session. Callers hold s.mu.
func (s *LifecycleService) detachLocked() {
	if s.cur == nil {
		return
	}
	s.cur.cancel()
	s.cur.acc.Stop()
	s.cur = nil
}

// ToggleItem flips the completion flag of the item(s) at pos and
// re-evaluates the list. When the last open item closes, the stored
// time is frozen, the list transitions to completed and OnComplete
// fires — exactly once, no matter how items are toggled afterwards.
// The returned bool reports whether this call completed the list.
func (s *LifecycleService) ToggleItem(listID string, pos int, completed bool) (bool, error) {
	if err := s.Store.SetItemCompletion(listID, pos, completed); err != nil {
		return false, err
	}
	if !completed {
		return false, nil
	}

	l, err := s.Store.GetList(listID)
	if err != nil {
		return false, err
	}
	if l.Status != domain.StatusInProgress {
		// Inspecting or re-toggling a finished list never re-fires, and
		// a list nobody has claimed yet stays pending no matter how many
		// items are checked off: completion is only reachable from
		// in_progress.
		return false, nil
	}

	all, err := s.Store.AllItemsCompleted(listID)
	if err != nil {
		return false, err
	}
	if !all {
		return false, nil
	}

	s.mu.Lock()
	if s.fired[listID] {
		s.mu.Unlock()
		return false, nil
	}
	s.fired[listID] = true
	seconds := l.AccumulatedSeconds
	if s.cur != nil && s.cur.listID == listID {
		seconds = s.cur.acc.Seconds()
	}
	s.mu.Unlock()

	if err := s.Store.SetAccumulatedSeconds(listID, seconds); err != nil {
		s.unfire(listID)
		return false, err
	}
	if err := s.Store.MarkCompleted(listID); err != nil {
		s.unfire(listID)
		return false, err
	}

	s.mu.Lock()
	if s.cur != nil && s.cur.listID == listID {
		s.detachLocked()
	}
	s.mu.Unlock()

	applog.Audit(nil, "list.completed", map[string]any{"list_id": listID, "seconds": seconds})
	if s.OnComplete != nil {
		s.OnComplete(listID, seconds)
	}
	return true, nil
}

// unfire re-arms completion for listID after a failed completion write
// so the next toggle can retry.
func (s *LifecycleService) unfire(listID string) {
	s.mu.Lock()
	delete(s.fired, listID)
	s.mu.Unlock()
}

// Elapsed returns the live stopwatch value for the active list, or the
// stored time for any other list.
func (s *LifecycleService) Elapsed(listID string) (int, error) {
	s.mu.Lock()
	if s.cur != nil && s.cur.listID == listID {
		secs := s.cur.acc.Seconds()
		s.mu.Unlock()
		return secs, nil
	}
	s.mu.Unlock()

	l, err := s.Store.GetList(listID)
	if err != nil {
		return 0, err
	}
	return l.AccumulatedSeconds, nil
}

func (s *LifecycleService) tick() time.Duration {
	if s.TickInterval > 0 {
		return s.TickInterval
	}
	return time.Second
}

func (s *LifecycleService) flush() time.Duration {
	if s.FlushInterval > 0 {
		return s.FlushInterval
	}
	return 15 * time.Second
}
