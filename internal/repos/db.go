package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure picker accounts exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Picking lists
CREATE TABLE IF NOT EXISTS lists(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','in_progress','completed')),
  assigned_user TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL DEFAULT '',
  accumulated_seconds INTEGER NOT NULL DEFAULT 0 CHECK (accumulated_seconds >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lists_status     ON lists(status);
CREATE INDEX IF NOT EXISTS idx_lists_created_at ON lists(created_at);

-- Line items. No UNIQUE(list_id,pos): malformed sheets can repeat a
-- position and those rows are kept as scanned.
CREATE TABLE IF NOT EXISTS items(
  list_id TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
  pos INTEGER NOT NULL,
  code TEXT NOT NULL,
  description TEXT,
  quantity NUMERIC NOT NULL CHECK (quantity >= 0),
  completed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_items_list ON items(list_id);

-- Per-list stopwatch value, independent of lists.accumulated_seconds,
-- used for fast resume after a restart.
CREATE TABLE IF NOT EXISTS timers(
  list_id TEXT PRIMARY KEY,
  seconds INTEGER NOT NULL DEFAULT 0 CHECK (seconds >= 0),
  updated_at TEXT
);

-- Picker accounts
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures a few picker accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Code, Name, Hash string
	}
	mk := func(id, code, name, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Code: code, Name: name, Hash: string(h)}
	}

	users := []u{
		mk("u-p001", "P001", "Ana", "Passw0rd!"),
		mk("u-p002", "P002", "Bruno", "Passw0rd!"),
		mk("u-p003", "P003", "Carla", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,code,name,password_hash)
			VALUES(?,?,?,?)
			ON CONFLICT(code) DO NOTHING
		`, x.ID, x.Code, x.Name, x.Hash); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Println("[seed] picker accounts ensured")
	return nil
}
