package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/legion-tools/LegionManager/system/powermode"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	createTableSQL = `
	CREATE TABLE IF NOT EXISTS transitions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		at         INTEGER NOT NULL,
		mode       INTEGER NOT NULL,
		origin     INTEGER NOT NULL CHECK (origin IN (0, 1))
	);
	CREATE INDEX IF NOT EXISTS transitions_at ON transitions (at);`

	insertSQL = `INSERT INTO transitions (at, mode, origin) VALUES (?, ?, ?)`

	recentSQL = `SELECT at, mode, origin FROM transitions ORDER BY at DESC, id DESC LIMIT ?`
)

const defaultDirPerm = 0o755

// Entry is one settled power mode change
type Entry struct {
	Mode   powermode.Mode
	Origin powermode.Origin
	At     time.Time
}

// Journal records settled transitions in a sqlite database
type Journal struct {
	mu     sync.Mutex
	db     *sql.DB
	logger zerolog.Logger
	closed bool
}

// Open creates the database file and its schema if needed
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Journal, error) {
	if path == "" {
		return nil, errors.New("history: empty database path")
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errors.Wrap(err, "history: cannot create database directory")
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "history: cannot open database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "history: cannot create schema")
	}

	logger.Info().Str("path", path).Msg("transition journal opened")

	return &Journal{
		db:     db,
		logger: logger,
	}, nil
}

// Record appends e to the journal
func (j *Journal) Record(ctx context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return errors.New("history: journal is closed")
	}

	if _, err := j.db.ExecContext(ctx, insertSQL, e.At.UnixNano(), int(e.Mode), int(e.Origin)); err != nil {
		return errors.Wrap(err, "history: cannot record transition")
	}

	j.logger.Debug().
		Str("mode", e.Mode.String()).
		Str("origin", e.Origin.String()).
		Msg("transition recorded")

	return nil
}

// Recent returns up to n entries, newest first
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil, errors.New("history: journal is closed")
	}

	rows, err := j.db.QueryContext(ctx, recentSQL, n)
	if err != nil {
		return nil, errors.Wrap(err, "history: cannot query transitions")
	}
	defer rows.Close()

	entries := make([]Entry, 0, n)
	for rows.Next() {
		var (
			at     int64
			mode   int
			origin int
		)
		if err := rows.Scan(&at, &mode, &origin); err != nil {
			return nil, errors.Wrap(err, "history: cannot scan transition")
		}
		entries = append(entries, Entry{
			Mode:   powermode.Mode(mode),
			Origin: powermode.Origin(origin),
			At:     time.Unix(0, at),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "history: cannot read transitions")
	}

	return entries, nil
}

// Close checkpoints the WAL and closes the database
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if _, err := j.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		j.logger.Warn().Err(err).Msg("cannot checkpoint journal")
	}
	return errors.Wrap(j.db.Close(), "history: cannot close database")
}
