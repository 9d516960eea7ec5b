// Package store persists programs and run history in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chazu/minivm/pkg/bytecode"
	"github.com/chazu/minivm/vm"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

// ErrProgramNotFound indicates the requested program doesn't exist
var ErrProgramNotFound = errors.New("program not found")

// DefaultPath is used when neither the manifest nor MINIVM_DB names a database.
const DefaultPath = ".minivm/minivm.db"

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	program     TEXT NOT NULL,
	result      TEXT NOT NULL DEFAULT '',
	error_kind  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_program ON runs (program, started_at);
`

// Store handles SQLite storage for programs and runs.
type Store struct {
	db   *sql.DB
	path string
	log  commonlog.Logger
	mu   sync.Mutex
}

// ProgramInfo summarizes a stored program.
type ProgramInfo struct {
	Name      string
	Size      int
	UpdatedAt time.Time
}

// RunRecord is one execution of a stored or file program.
type RunRecord struct {
	ID        string
	Program   string
	Result    string // Repr of the result; empty on failure
	ErrorKind string // ErrorKind name; empty on success or for non-execution errors
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether the run ended in an error.
func (r RunRecord) Failed() bool { return r.Error != "" }

// NewRunRecord builds a record from a run's outcome.
func NewRunRecord(program string, started time.Time, result vm.Value, err error) RunRecord {
	rec := RunRecord{
		Program:   program,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if err != nil {
		rec.Error = err.Error()
		if kind, ok := vm.KindOf(err); ok {
			rec.ErrorKind = kind.String()
		}
		return rec
	}
	rec.Result = result.Repr()
	return rec
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access from other processes
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	s := &Store{db: db, path: path, log: commonlog.GetLogger("minivm.store")}
	s.log.Debugf("opened store %s", path)
	return s, nil
}

// OpenDefault opens the database named by MINIVM_DB, or DefaultPath.
func OpenDefault() (*Store, error) {
	path := os.Getenv("MINIVM_DB")
	if path == "" {
		path = DefaultPath
	}
	return Open(path)
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Programs
// ---------------------------------------------------------------------------

// SaveProgram stores p under its name, replacing any previous version.
func (s *Store) SaveProgram(p *bytecode.Program) error {
	if p.Name == "" {
		return fmt.Errorf("saving program: program has no name")
	}
	data, err := bytecode.MarshalProgram(p)
	if err != nil {
		return fmt.Errorf("saving program %s: %w", p.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (name, data, updated_at) VALUES (?, ?, ?)",
		p.Name, data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving program %s: %w", p.Name, err)
	}
	s.log.Debugf("saved program %s (%d instructions)", p.Name, p.Len())
	return nil
}

// LoadProgram retrieves a program by name.
func (s *Store) LoadProgram(name string) (*bytecode.Program, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM programs WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, name)
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}

	p, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", name, err)
	}
	return p, nil
}

// ListPrograms returns all stored programs ordered by name.
func (s *Store) ListPrograms() ([]ProgramInfo, error) {
	rows, err := s.db.Query("SELECT name, length(data), updated_at FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var infos []ProgramInfo
	for rows.Next() {
		var (
			info    ProgramInfo
			updated int64
		)
		if err := rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		info.UpdatedAt = time.Unix(0, updated)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteProgram removes a program. Its run history is kept.
func (s *Store) DeleteProgram(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, name)
	}
	s.log.Debugf("deleted program %s", name)
	return nil
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

// RecordRun stores a run record, assigning an ID if it has none.
// It returns the record's ID.
func (s *Store) RecordRun(rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, program, result, error_kind, error, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Program, rec.Result, rec.ErrorKind, rec.Error,
		rec.StartedAt.UnixNano(), int64(rec.Duration),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return rec.ID, nil
}

// History returns the runs of a program, newest first. A limit <= 0
// returns all runs.
func (s *Store) History(program string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, program, result, error_kind, error, started_at, duration_ns
		 FROM runs WHERE program = ?
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		program, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var (
			rec              RunRecord
			started, elapsed int64
		)
		if err := rows.Scan(&rec.ID, &rec.Program, &rec.Result, &rec.ErrorKind, &rec.Error, &started, &elapsed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rec.StartedAt = time.Unix(0, started)
		rec.Duration = time.Duration(elapsed)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
