// Package runhistory keeps a local record of training runs. It uses
// BoltDB as the underlying storage engine so a batch process leaves an
// inspectable trail of metrics without needing a metrics server.
package runhistory

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"hr-attrition/internal/eval"
)

const runsBucket = "runs"

// Run is one completed training run.
type Run struct {
	Timestamp    time.Time   `json:"timestamp"`
	TrainRows    int         `json:"train_rows"`
	TestRows     int         `json:"test_rows"`
	ExcludedRows int         `json:"excluded_rows"`
	PositiveRate float64     `json:"positive_rate"`
	Metrics      eval.Result `json:"metrics"`
	Converged    bool        `json:"converged"`
	Iterations   int         `json:"iterations"`
	ArtifactPath string      `json:"artifact_path"`
}

// Log provides persistent storage for run records.
type Log struct {
	db *bbolt.DB
}

// Open opens (or creates) the run-history database and its bucket.
func Open(path string) (*Log, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open run history db %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the database.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Append stores one run record, keyed by its timestamp.
func (l *Log) Append(run Run) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run record: %w", err)
		}

		key := fmt.Sprintf("%020d", run.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// Recent returns up to n runs, newest first.
func (l *Log) Recent(n int) ([]Run, error) {
	var runs []Run

	err := l.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(runs) < n; k, v = c.Prev() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				continue // skip malformed records
			}
			runs = append(runs, run)
		}
		return nil
	})

	return runs, err
}
