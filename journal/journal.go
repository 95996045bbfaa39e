package journal

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robmorgan/cliptile/clip"
	"github.com/robmorgan/cliptile/tiling"
	_ "modernc.org/sqlite"
)

// Entry is one recorded resize.
type Entry struct {
	ID        int64
	Track     int
	Clip      clip.ID
	Requested float64
	Achieved  float64
	Clips     []clip.ID
	Warnings  []string
	AppliedAt time.Time
}

// DB records every resize a batch applies.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal at path. Use ":memory:" for a throwaway journal.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS resizes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track INTEGER NOT NULL,
		clip INTEGER NOT NULL,
		requested REAL NOT NULL,
		achieved REAL NOT NULL,
		clips TEXT NOT NULL,
		warnings TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_resizes_clip ON resizes(track, clip);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close releases the database.
func (j *DB) Close() error {
	return j.db.Close()
}

// Record stores one result.
func (j *DB) Record(res tiling.Result) error {
	_, err := j.db.Exec(`
		INSERT INTO resizes (track, clip, requested, achieved, clips, warnings, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Request.Track, int64(res.Request.Clip), res.Request.Length, res.Achieved,
		joinIDs(res.Clips), strings.Join(res.Warnings, "\n"), j.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record resize of clip %d: %w", res.Request.Clip, err)
	}
	return nil
}

// List returns every recorded resize in the order it was applied.
func (j *DB) List() ([]Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, track, clip, requested, achieved, clips, warnings, applied_at
		FROM resizes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var clipID, appliedAt int64
		var clips, warnings string
		if err := rows.Scan(&e.ID, &e.Track, &clipID, &e.Requested, &e.Achieved, &clips, &warnings, &appliedAt); err != nil {
			return nil, err
		}
		e.Clip = clip.ID(clipID)
		e.AppliedAt = time.Unix(appliedAt, 0)
		if e.Clips, err = splitIDs(clips); err != nil {
			return nil, err
		}
		if warnings != "" {
			e.Warnings = strings.Split(warnings, "\n")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func joinIDs(ids []clip.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) ([]clip.ID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]clip.ID, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt clip list %q: %w", s, err)
		}
		ids[i] = clip.ID(n)
	}
	return ids, nil
}
