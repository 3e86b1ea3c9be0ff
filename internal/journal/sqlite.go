package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_events (
	id         INTEGER PRIMARY KEY,
	kind       TEXT    NOT NULL,
	timestamp  TEXT    NOT NULL,
	session    TEXT    NOT NULL DEFAULT '',
	screen     TEXT    NOT NULL DEFAULT '',
	zone       TEXT    NOT NULL DEFAULT '',
	intent     TEXT    NOT NULL DEFAULT '',
	source     TEXT    NOT NULL DEFAULT '',
	device     TEXT    NOT NULL DEFAULT '',
	message    TEXT    NOT NULL DEFAULT '',
	level      TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_journal_session_ts ON journal_events(session, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_journal_kind ON journal_events(kind, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteJournal is a Journal backed by a SQLite database.
type SQLiteJournal struct {
	db *sql.DB

	mu      sync.RWMutex
	session string
}

// Open opens (or creates) the database at path and runs the schema.
// Use ":memory:" in tests.
func Open(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run journal schema: %w", err)
	}
	return &SQLiteJournal{db: db, session: uuid.NewString()}, nil
}

func (j *SQLiteJournal) StartSession() string {
	id := uuid.NewString()
	j.mu.Lock()
	j.session = id
	j.mu.Unlock()
	return id
}

func (j *SQLiteJournal) Session() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.session
}

// Emit inserts an event. A zero Timestamp becomes time.Now() and an empty
// Session becomes the current session. Failures are dropped.
func (j *SQLiteJournal) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Session == "" {
		e.Session = j.Session()
	}
	level := e.Level
	if level == "" {
		level = "info"
	}

	const q = `
		INSERT INTO journal_events
			(kind, timestamp, session, screen, zone, intent, source, device, message, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, _ = j.db.Exec(q,
		string(e.Kind),
		formatTime(e.Timestamp),
		e.Session,
		e.Screen,
		e.Zone,
		e.Intent,
		e.Source,
		e.Device,
		e.Message,
		level,
	)
}

// Query returns events matching the filter, newest first. Limit is capped
// at 500.
func (j *SQLiteJournal) Query(f Filter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	var conditions []string
	var args []any
	if f.Session != "" {
		conditions = append(conditions, "session = ?")
		args = append(args, f.Session)
	}
	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, formatTime(f.After))
	}

	q := `
		SELECT id, kind, timestamp, session, screen, zone, intent, source, device, message, level
		FROM journal_events
	`
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT %d", limit)

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(
			&e.ID,
			(*string)(&e.Kind),
			&ts,
			&e.Session,
			&e.Screen,
			&e.Zone,
			&e.Intent,
			&e.Source,
			&e.Device,
			&e.Message,
			&e.Level,
		); err != nil {
			return nil, fmt.Errorf("scan journal event: %w", err)
		}
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal events: %w", err)
	}
	return events, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
