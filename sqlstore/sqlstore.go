// Package sqlstore persists report records to a SQLite database. The schema
// follows the experiment/metrics split: an experiments table holding one row
// of parameters per experiment, and a metrics table holding one row per
// reported value, keyed by experiment, run and step.
package sqlstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/reader"
	"github.com/tracelab/measure/reporter"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id     INTEGER PRIMARY KEY,
	params TEXT
);
CREATE TABLE IF NOT EXISTS metrics (
	id            INTEGER PRIMARY KEY,
	experiment_id INTEGER NOT NULL,
	run_id        INTEGER NOT NULL,
	step          INTEGER NOT NULL,
	tag           TEXT NOT NULL,
	value         REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS metrics_by_tag
	ON metrics (experiment_id, run_id, tag, step);
`

// DB wraps a SQLite database holding experiments and their metrics.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// NewExperiment inserts a new experiment row with the given parameter blob
// (typically JSON) and returns its id.
func (d *DB) NewExperiment(params string) (int64, error) {
	res, err := d.db.Exec(`INSERT INTO experiments(params) VALUES(?)`, params)
	if err != nil {
		return 0, fmt.Errorf("failed to create experiment: %w", err)
	}
	return res.LastInsertId()
}

// ExperimentParams returns the parameter blob stored for the experiment.
func (d *DB) ExperimentParams(experimentID int64) (string, error) {
	var params string
	err := d.db.QueryRow(
		`SELECT params FROM experiments WHERE id = ?`, experimentID,
	).Scan(&params)
	if err != nil {
		return "", err
	}
	return params, nil
}

// NewReporter returns a reporter that writes metrics for the given
// experiment and run. Each report call commits one transaction. Values must
// be convertible to float64; any other value fails the call.
// Closing the reporter does not close the database.
func (d *DB) NewReporter(experimentID, runID int64) reporter.Reporter {
	return &sqlReporter{db: d.db, experimentID: experimentID, runID: runID}
}

// NewReader returns a reader over the metrics of the given experiment and
// run. Closing the reader does not close the database.
func (d *DB) NewReader(experimentID, runID int64) reader.Reader {
	return &sqlReader{db: d.db, experimentID: experimentID, runID: runID}
}

type sqlReporter struct {
	db           *sql.DB
	experimentID int64
	runID        int64
}

func (r *sqlReporter) Report(step int, m measure.Metrics) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(
		`INSERT INTO metrics(experiment_id, run_id, step, tag, value) VALUES(?,?,?,?,?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for tag, value := range m {
		v, ok := toFloat(value)
		if !ok {
			err = fmt.Errorf("metric %q: value %v (%T) is not numeric", tag, value, value)
			return err
		}
		if _, err = stmt.Exec(r.experimentID, r.runID, step, tag, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *sqlReporter) Close() error { return nil }

type sqlReader struct {
	db           *sql.DB
	experimentID int64
	runID        int64
}

func (r *sqlReader) Keys() ([]string, error) {
	rows, err := r.db.Query(
		`SELECT DISTINCT tag FROM metrics WHERE experiment_id = ? AND run_id = ? ORDER BY tag`,
		r.experimentID, r.runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		keys = append(keys, tag)
	}
	return keys, rows.Err()
}

func (r *sqlReader) Read(key string) ([]measure.Sample, error) {
	rows, err := r.db.Query(
		`SELECT step, value FROM metrics
		 WHERE experiment_id = ? AND run_id = ? AND tag = ? ORDER BY step, id`,
		r.experimentID, r.runID, key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []measure.Sample
	for rows.Next() {
		var (
			step  int
			value float64
		)
		if err := rows.Scan(&step, &value); err != nil {
			return nil, err
		}
		samples = append(samples, measure.Sample{Step: step, Value: value})
	}
	return samples, rows.Err()
}

func (r *sqlReader) Close() error { return nil }

func toFloat(v measure.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
