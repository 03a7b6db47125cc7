// Package store reads and writes the relational employee record store. The
// store is shared with the dashboard collaborator: reads go through an
// explicit cached snapshot keyed by a change token, writes take an
// exclusive transaction and invalidate the cache.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"hr-attrition/internal/dataset"
)

// Store wraps the SQLite employees table.
type Store struct {
	db    *sql.DB
	path  string
	table string

	mu         sync.Mutex
	cached     []dataset.Record
	cacheToken int64
	hasCache   bool
}

// Open opens the SQLite database at path. A missing database file is a
// fatal data condition: the loader has to have populated the store first.
// ":memory:" is accepted for tests.
func Open(path, table string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, &dataset.DataError{
				Source: path,
				Reason: "record store not found; load employee data first",
			}
		}
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	// One connection: the pipeline is single-threaded, an in-memory test
	// database stays coherent, and writes cannot interleave.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db %s: %w", path, err)
	}

	return &Store{db: db, path: path, table: table}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle, mainly for test setup.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Columns returns the column names of the employees table.
func (s *Store) Columns() ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT * FROM %q LIMIT 0`, s.table))
	if err != nil {
		return nil, &dataset.DataError{
			Source: s.path,
			Reason: fmt.Sprintf("table %s is not readable: %v", s.table, err),
		}
	}
	defer rows.Close()
	return rows.Columns()
}

// LoadEmployees reads every row of the employees table, bypassing the
// cache. NULL values become missing (empty) fields.
func (s *Store) LoadEmployees() ([]dataset.Record, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT * FROM %q`, s.table))
	if err != nil {
		return nil, &dataset.DataError{
			Source: s.path,
			Reason: fmt.Sprintf("table %s is not readable: %v", s.table, err),
		}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", s.table, err)
	}

	var records []dataset.Record
	values := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.table, err)
		}
		r := make(dataset.Record, len(cols))
		for i, col := range cols {
			if values[i].Valid {
				r[col] = values[i].String
			} else {
				r[col] = ""
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", s.table, err)
	}
	return records, nil
}

// Snapshot returns a cached read view of the employees table. The cache is
// keyed by SQLite's data_version token, which changes when another
// connection commits a write; our own writes invalidate explicitly, since
// data_version does not observe same-connection changes.
func (s *Store) Snapshot() ([]dataset.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.changeToken()
	if err != nil {
		return nil, err
	}
	if s.hasCache && token == s.cacheToken {
		return s.cached, nil
	}

	records, err := s.LoadEmployees()
	if err != nil {
		return nil, err
	}
	s.cached = records
	s.cacheToken = token
	s.hasCache = true
	return records, nil
}

// Invalidate drops the cached snapshot so the next Snapshot re-reads.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.hasCache = false
	s.mu.Unlock()
}

func (s *Store) changeToken() (int64, error) {
	var token int64
	if err := s.db.QueryRow(`PRAGMA data_version`).Scan(&token); err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return token, nil
}

// InsertEmployee inserts one row inside an exclusive transaction and
// invalidates the cached snapshot on success.
func (s *Store) InsertEmployee(record dataset.Record) error {
	if len(record) == 0 {
		return fmt.Errorf("refusing to insert an empty record")
	}

	cols := make([]string, 0, len(record))
	for col := range record {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	holders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf("%q", col)
		holders[i] = "?"
		args[i] = record[col]
	}

	query := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		s.table, strings.Join(quoted, ", "), strings.Join(holders, ", "))

	if err := s.exclusive(query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", s.table, err)
	}
	s.Invalidate()
	return nil
}

// UpdateEmployee updates the named columns of one employee row inside an
// exclusive transaction and invalidates the cached snapshot on success.
func (s *Store) UpdateEmployee(employeeNumber string, updates map[string]string) error {
	if len(updates) == 0 {
		return fmt.Errorf("no columns to update")
	}

	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%q = ?", col)
		args = append(args, updates[col])
	}
	args = append(args, employeeNumber)

	query := fmt.Sprintf(`UPDATE %q SET %s WHERE EmployeeNumber = ?`,
		s.table, strings.Join(sets, ", "))

	if err := s.exclusive(query, args...); err != nil {
		return fmt.Errorf("update %s: %w", s.table, err)
	}
	s.Invalidate()
	return nil
}

// exclusive runs one statement in its own transaction so a writer holds
// the database for the duration of its write.
func (s *Store) exclusive(query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
