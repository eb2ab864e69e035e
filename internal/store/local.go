package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"picklist/internal/domain"
	"picklist/internal/repos"
)

// Local is the sqlite-backed Store. Successful writes notify
// subscribers so derived views (stats) recompute on change instead of
// polling.
type Local struct {
	lists *repos.ListRepo

	mu   sync.Mutex
	subs []func()
}

func NewLocal(lists *repos.ListRepo) *Local { return &Local{lists: lists} }

// Subscribe registers fn to run after every successful write.
func (s *Local) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Local) notify() {
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (s *Local) CreateList(name string, items []domain.Item, initialSeconds int) (*domain.List, error) {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	l := &domain.List{
		ID:                 uuid.NewString(),
		Name:               name,
		Status:             domain.StatusPending,
		AccumulatedSeconds: initialSeconds,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}
	if err := s.lists.Create(l, items); err != nil {
		return nil, unavailable("creating list", err)
	}
	s.notify()
	return l, nil
}

func (s *Local) SetItemCompletion(listID string, pos int, completed bool) error {
	// Zero rows means no such item; idempotent updates treat that as a
	// no-op rather than an error.
	if _, err := s.lists.SetItemCompletion(listID, pos, completed); err != nil {
		return unavailable("updating item", err)
	}
	s.notify()
	return nil
}

func (s *Local) SetAccumulatedSeconds(listID string, seconds int) error {
	if _, err := s.lists.SetSeconds(listID, seconds); err != nil {
		return unavailable("updating list time", err)
	}
	s.notify()
	return nil
}

func (s *Local) MarkInProgress(listID, userCode string) (*domain.List, error) {
	l, err := s.lists.Get(listID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("loading list", err)
	}

	switch l.Status {
	case domain.StatusCompleted:
		return nil, fmt.Errorf("%w: %s", domain.ErrListCompleted, listID)
	case domain.StatusInProgress:
		if l.AssignedUser != "" && l.AssignedUser != userCode {
			return nil, fmt.Errorf("%w: held by %s", domain.ErrListLocked, l.AssignedUser)
		}
	}

	// Re-entry refreshes the assignment but keeps the original start
	// stamp; a fresh start (or a list that never got one) stamps now.
	refreshStart := l.Status == domain.StatusPending || l.StartedAt == ""
	if err := s.lists.SetInProgress(listID, userCode, refreshStart); err != nil {
		return nil, unavailable("starting list", err)
	}
	s.notify()

	updated, err := s.lists.Get(listID)
	if err != nil {
		return nil, unavailable("reloading list", err)
	}
	return &updated, nil
}

func (s *Local) MarkCompleted(listID string) error {
	n, err := s.lists.SetCompleted(listID)
	if err != nil {
		return unavailable("completing list", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.notify()
	return nil
}

func (s *Local) GetList(listID string) (*domain.List, error) {
	l, err := s.lists.Get(listID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("loading list", err)
	}
	return &l, nil
}

// WithItems returns any list together with its items ordered by
// position, regardless of status.
func (s *Local) WithItems(listID string) (*domain.ActiveList, error) {
	l, err := s.GetList(listID)
	if err != nil {
		return nil, err
	}
	items, err := s.lists.Items(listID)
	if err != nil {
		return nil, unavailable("loading items", err)
	}
	return &domain.ActiveList{List: *l, Items: items}, nil
}

func (s *Local) ActiveList(userCode string) (*domain.ActiveList, error) {
	l, err := s.lists.Active(userCode)
	if err != nil {
		return nil, unavailable("loading active list", err)
	}
	if l == nil {
		return nil, nil
	}
	items, err := s.lists.Items(l.ID)
	if err != nil {
		return nil, unavailable("loading active items", err)
	}
	return &domain.ActiveList{List: *l, Items: items}, nil
}

func (s *Local) ListByStatus(statuses ...domain.Status) ([]domain.ListSummary, error) {
	out, err := s.lists.SummariesByStatus(statuses)
	if err != nil {
		return nil, unavailable("listing lists", err)
	}
	return out, nil
}

func (s *Local) ListCompleted() ([]domain.ListSummary, error) {
	return s.ListByStatus(domain.StatusCompleted)
}

// ImportList inserts a list that already carries its identity and
// timestamps, as received from the sync server during mirroring.
func (s *Local) ImportList(l *domain.List, items []domain.Item) error {
	if err := s.lists.Create(l, items); err != nil {
		return unavailable("mirroring list", err)
	}
	s.notify()
	return nil
}

// AllItemsCompleted reports whether the list has at least one item and
// every item is completed.
func (s *Local) AllItemsCompleted(listID string) (bool, error) {
	remaining, total, err := s.lists.Incomplete(listID)
	if err != nil {
		return false, unavailable("counting items", err)
	}
	return total > 0 && remaining == 0, nil
}
