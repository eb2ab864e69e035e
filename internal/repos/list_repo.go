package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"picklist/internal/domain"
)

type ListRepo struct{ db *sqlx.DB }

func NewListRepo(db *sqlx.DB) *ListRepo { return &ListRepo{db: db} }

// now returns timestamps with enough precision that creation order is
// preserved even for lists created in the same second.
func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// Create inserts a list header and all of its items in one transaction.
// Either both persist or neither does.
func (r *ListRepo) Create(l *domain.List, items []domain.Item) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO lists(id, name, status, assigned_user, started_at, accumulated_seconds, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.Name, l.Status, l.AssignedUser, l.StartedAt, l.AccumulatedSeconds, l.CreatedAt, l.UpdatedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO items(list_id, pos, code, description, quantity, completed)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, l.ID, it.Position, it.Code, it.Description, it.Quantity, it.Completed); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get returns a list header. sql.ErrNoRows is surfaced for callers to
// branch on.
func (r *ListRepo) Get(id string) (domain.List, error) {
	var l domain.List
	err := r.db.Get(&l, `
		SELECT id, name, status, assigned_user, started_at, accumulated_seconds, created_at, updated_at
		FROM lists WHERE id = ?
	`, id)
	return l, err
}

// Items returns a list's items ordered by position.
func (r *ListRepo) Items(listID string) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.Select(&items, `
		SELECT list_id, pos, code, description, quantity, completed
		FROM items WHERE list_id = ? ORDER BY pos
	`, listID)
	return items, err
}

// SetItemCompletion updates every item matching (listID, pos) and
// returns how many rows changed. Duplicate positions toggle together;
// zero means no such item.
func (r *ListRepo) SetItemCompletion(listID string, pos int, completed bool) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE items SET completed = ? WHERE list_id = ? AND pos = ?
	`, completed, listID, pos)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetSeconds overwrites the stored accumulated time and refreshes
// updated_at in the same statement.
func (r *ListRepo) SetSeconds(listID string, seconds int) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE lists SET accumulated_seconds = ?, updated_at = ? WHERE id = ?
	`, seconds, now(), listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetInProgress stamps the in_progress status, the assigned picker and,
// when refreshStart is true, a fresh started_at.
func (r *ListRepo) SetInProgress(listID, userCode string, refreshStart bool) error {
	ts := now()
	if refreshStart {
		_, err := r.db.Exec(`
			UPDATE lists SET status = ?, assigned_user = ?, started_at = ?, updated_at = ? WHERE id = ?
		`, domain.StatusInProgress, userCode, ts, ts, listID)
		return err
	}
	_, err := r.db.Exec(`
		UPDATE lists SET status = ?, assigned_user = ?, updated_at = ? WHERE id = ?
	`, domain.StatusInProgress, userCode, ts, listID)
	return err
}

// SetCompleted stamps the completed status. Idempotent.
func (r *ListRepo) SetCompleted(listID string) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE lists SET status = ?, updated_at = ? WHERE id = ?
	`, domain.StatusCompleted, now(), listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SummariesByStatus returns lists in any of the given statuses, newest
// first, each with its item count.
func (r *ListRepo) SummariesByStatus(statuses []domain.Status) ([]domain.ListSummary, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT l.id, l.name, l.status, l.assigned_user, l.started_at, l.accumulated_seconds,
		       l.created_at, l.updated_at,
		       (SELECT COUNT(*) FROM items i WHERE i.list_id = l.id) AS item_count
		FROM lists l
		WHERE l.status IN (?)
		ORDER BY l.created_at DESC
	`, statuses)
	if err != nil {
		return nil, err
	}
	var out []domain.ListSummary
	err = r.db.Select(&out, query, args...)
	return out, err
}

// Active returns the most recently created in_progress list, scoped to
// userCode when one is given, or nil when none is active.
func (r *ListRepo) Active(userCode string) (*domain.List, error) {
	var lists []domain.List
	var err error
	if userCode != "" {
		err = r.db.Select(&lists, `
			SELECT id, name, status, assigned_user, started_at, accumulated_seconds, created_at, updated_at
			FROM lists WHERE status = ? AND assigned_user = ?
			ORDER BY created_at DESC LIMIT 1
		`, domain.StatusInProgress, userCode)
	} else {
		err = r.db.Select(&lists, `
			SELECT id, name, status, assigned_user, started_at, accumulated_seconds, created_at, updated_at
			FROM lists WHERE status = ?
			ORDER BY created_at DESC LIMIT 1
		`, domain.StatusInProgress)
	}
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return &lists[0], nil
}

// Incomplete counts a list's items that are not yet completed, along
// with the total item count.
func (r *ListRepo) Incomplete(listID string) (remaining, total int, err error) {
	row := r.db.QueryRow(`
		SELECT COUNT(*) FILTER (WHERE completed = 0), COUNT(*)
		FROM items WHERE list_id = ?
	`, listID)
	err = row.Scan(&remaining, &total)
	return remaining, total, err
}
