package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the request audit trail to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS requests (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			endpoint    TEXT,
			start_date  TEXT,
			symbols     INTEGER,
			failed      INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_ts ON requests(timestamp)`,

		`CREATE TABLE IF NOT EXISTS request_symbols (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL REFERENCES requests(id),
			symbol     TEXT NOT NULL,
			status     TEXT NOT NULL,
			row_count  INTEGER,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_request_symbols_req ON request_symbols(request_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRequest(evt *RequestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := 0
	for _, o := range evt.Outcomes {
		if o.Status == StatusError {
			failed++
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO requests
		(id, timestamp, endpoint, start_date, symbols, failed, duration_ms)
		VALUES (?,?,?,?,?,?,?)`,
		evt.ID, time.Now().Unix(), evt.Endpoint, evt.StartDate,
		len(evt.Outcomes), failed, evt.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	for _, o := range evt.Outcomes {
		if _, err := tx.Exec(`INSERT INTO request_symbols
			(request_id, symbol, status, row_count, error)
			VALUES (?,?,?,?,?)`,
			evt.ID, o.Symbol, o.Status, o.Rows, o.Error,
		); err != nil {
			return fmt.Errorf("insert outcome %s: %w", o.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
