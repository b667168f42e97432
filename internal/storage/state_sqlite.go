package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codepomodoro/internal/core/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const stateFileName = "state.db"

// DefaultDataDir returns <UserConfigDir>/<appName>.
func DefaultDataDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// StatePath returns the database path inside a data directory.
func StatePath(dataDir string) string {
	return filepath.Join(dataDir, stateFileName)
}

// SQLiteStore keeps the session record and the completion history.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (store *SQLiteStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS completions (
  id TEXT PRIMARY KEY,
  session_type TEXT NOT NULL,
  day TEXT NOT NULL,
  completed_at TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS completions_day ON completions(session_type, day)`,
	}
	for _, stmt := range statements {
		if _, err := store.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}

// Save stores the session record under key.
func (store *SQLiteStore) Save(ctx context.Context, key string, state model.SessionState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	const stmt = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`
	if _, err := store.db.ExecContext(ctx, stmt, key, string(value), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// Load returns the record stored under key. ok is false when nothing was saved.
func (store *SQLiteStore) Load(ctx context.Context, key string) (model.SessionState, bool, error) {
	var value string
	err := store.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionState{}, false, nil
	}
	if err != nil {
		return model.SessionState{}, false, fmt.Errorf("load state %s: %w", key, err)
	}

	var state model.SessionState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return model.SessionState{}, false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return state, true, nil
}

// RecordCompletion appends a finished phase to the history.
func (store *SQLiteStore) RecordCompletion(ctx context.Context, session model.SessionType, at time.Time) error {
	const stmt = `INSERT INTO completions (id, session_type, day, completed_at) VALUES (?, ?, ?, ?)`
	_, err := store.db.ExecContext(ctx, stmt,
		uuid.NewString(),
		string(session),
		at.Format(model.DayLayout),
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// Stats counts completed work sessions today, overall and per day for the
// last days calendar days (oldest first, zero days included).
func (store *SQLiteStore) Stats(ctx context.Context, now time.Time, days int) (model.Stats, error) {
	if days <= 0 {
		days = 7
	}
	work := string(model.SessionWork)
	stats := model.Stats{}

	if err := store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE session_type = ?`, work,
	).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("count completions: %w", err)
	}

	start := now.AddDate(0, 0, -(days - 1))
	rows, err := store.db.QueryContext(ctx, `
SELECT day, COUNT(*) FROM completions
WHERE session_type = ? AND day >= ?
GROUP BY day`, work, start.Format(model.DayLayout))
	if err != nil {
		return stats, fmt.Errorf("query daily completions: %w", err)
	}
	defer rows.Close()

	perDay := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return stats, fmt.Errorf("scan daily completions: %w", err)
		}
		perDay[day] = count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate daily completions: %w", err)
	}

	for offset := 0; offset < days; offset++ {
		day := start.AddDate(0, 0, offset).Format(model.DayLayout)
		stats.LastDays = append(stats.LastDays, model.DayCount{Day: day, Count: perDay[day]})
	}
	stats.Today = perDay[now.Format(model.DayLayout)]
	return stats, nil
}
