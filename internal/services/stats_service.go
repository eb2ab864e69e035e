package services

import (
	"sync"
	"time"

	"picklist/internal/domain"
	applog "picklist/internal/log"
	"picklist/internal/store"
)

// Stats are the dashboard counters.
type Stats struct {
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	CompletedToday int `json:"completed_today"`
}

// StatsService keeps list counters. It recomputes when the store
// reports a write instead of polling on a timer, so the counters are
// never staler than the last mutation.
type StatsService struct {
	store store.Store

	mu    sync.Mutex
	stats Stats
}

// NewStatsService computes the initial snapshot and subscribes to the
// local store's change notifications.
func NewStatsService(st store.Store, local *store.Local) *StatsService {
	s := &StatsService{store: st}
	s.refresh()
	if local != nil {
		local.Subscribe(s.refresh)
	}
	return s
}

// Snapshot returns the current counters.
func (s *StatsService) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *StatsService) refresh() {
	open, err := s.store.ListByStatus(domain.StatusPending, domain.StatusInProgress)
	if err != nil {
		applog.Error(nil, "stats.refresh", err, nil)
		return
	}
	done, err := s.store.ListCompleted()
	if err != nil {
		applog.Error(nil, "stats.refresh", err, nil)
		return
	}

	var st Stats
	for _, l := range open {
		if l.Status == domain.StatusPending {
			st.Pending++
		} else {
			st.InProgress++
		}
	}
	today := time.Now().UTC().Format("2006-01-02")
	for _, l := range done {
		if len(l.UpdatedAt) >= len(today) && l.UpdatedAt[:len(today)] == today {
			st.CompletedToday++
		}
	}

	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
}
