package repos

import "github.com/jmoiron/sqlx"

// TimerRepo stores the per-list stopwatch value. It implements
// timer.Saver.
type TimerRepo struct{ db *sqlx.DB }

func NewTimerRepo(db *sqlx.DB) *TimerRepo { return &TimerRepo{db: db} }

// SaveSeconds upserts the stopwatch value for a list. Writing the same
// value twice is harmless.
func (r *TimerRepo) SaveSeconds(listID string, seconds int) error {
	_, err := r.db.Exec(`
		INSERT INTO timers(list_id, seconds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(list_id) DO UPDATE SET seconds = excluded.seconds, updated_at = excluded.updated_at
	`, listID, seconds, now())
	return err
}

// LoadSeconds returns the last persisted stopwatch value, or zero when
// the list has never ticked.
func (r *TimerRepo) LoadSeconds(listID string) (int, error) {
	var secs int
	err := r.db.Get(&secs, `SELECT seconds FROM timers WHERE list_id = ?`, listID)
	if err != nil {
		return 0, err
	}
	return secs, nil
}
