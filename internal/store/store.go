// Package store holds the picking-list repository contract and its two
// interchangeable backends: a local sqlite store and a sync-server
// client that mirrors into the local one. Callers program against the
// Store interface and never care which backend they hold.
package store

import (
	"fmt"

	"picklist/internal/domain"
)

type Store interface {
	// CreateList persists a new pending list and its items as one
	// logical unit and returns the created list.
	CreateList(name string, items []domain.Item, initialSeconds int) (*domain.List, error)

	// SetItemCompletion updates the item(s) at (listID, pos). Updating a
	// position that does not exist is a no-op.
	SetItemCompletion(listID string, pos int, completed bool) error

	// SetAccumulatedSeconds overwrites the list's stored elapsed time.
	// Safe to call frequently; writing the same value twice is a no-op.
	SetAccumulatedSeconds(listID string, seconds int) error

	// MarkInProgress transitions pending -> in_progress for userCode.
	// Re-entry by the same assigned user is allowed. A list held by a
	// different user fails with domain.ErrListLocked without mutating
	// anything.
	MarkInProgress(listID, userCode string) (*domain.List, error)

	// MarkCompleted transitions the list to completed. Idempotent; a
	// missing list fails with domain.ErrNotFound.
	MarkCompleted(listID string) error

	// GetList returns one list header, or domain.ErrNotFound.
	GetList(listID string) (*domain.List, error)

	// ActiveList returns the in-progress list for userCode (or the most
	// recent in-progress list overall when userCode is empty) with its
	// items ordered by position, or nil when none is active.
	ActiveList(userCode string) (*domain.ActiveList, error)

	// ListByStatus returns lists in any of the given statuses, newest
	// first, each with its item count.
	ListByStatus(statuses ...domain.Status) ([]domain.ListSummary, error)

	// ListCompleted returns all completed lists, newest first.
	ListCompleted() ([]domain.ListSummary, error)

	// AllItemsCompleted reports whether the list has at least one item
	// and every item is completed.
	AllItemsCompleted(listID string) (bool, error)
}

// unavailable tags a failed local write/read with the storage sentinel
// so callers can branch on errors.Is while keeping the operation and
// cause readable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w (%v)", op, domain.ErrStorageUnavailable, err)
}
