package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	seen       INTEGER NOT NULL DEFAULT 0,
	parsed     INTEGER NOT NULL DEFAULT 0,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	row_num     INTEGER NOT NULL,
	original    TEXT NOT NULL,
	cleaned     TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	suffix      TEXT NOT NULL DEFAULT '',
	parsed      BOOLEAN NOT NULL,
	parse_type  INTEGER NOT NULL DEFAULT 0,
	first_name  TEXT NOT NULL DEFAULT '',
	middle_name TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, row_num)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_results_parsed ON run_results(run_id, parsed);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Source:    source,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, seen, parsed int64) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, seen, parsed, "")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, seen, parsed int64, runErr error) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, seen, parsed, errString(runErr))
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, seen, parsed int64, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, seen = ?, parsed = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), seen, parsed, msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, seen, parsed, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, seen, parsed, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveResults inserts records in one transaction, retrying while the
// database is locked by another writer.
func (s *SQLiteStore) SaveResults(ctx context.Context, records []model.NameRecord) error {
	if len(records) == 0 {
		return nil
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("sqlite", "save_results")

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return s.insertResults(ctx, records)
	})
	if err != nil {
		return err
	}

	zap.L().Debug("sqlite: saved results",
		zap.String("run_id", records[0].RunID),
		zap.Int("count", len(records)),
	)
	return nil
}

func (s *SQLiteStore) insertResults(ctx context.Context, records []model.NameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save results")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO run_results (run_id, row_num, original, cleaned, title, suffix, parsed, parse_type, first_name, middle_name, last_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare save results")
	}
	defer stmt.Close() //nolint:errcheck

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, resultRow(rec)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert result row %d", rec.Row)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save results")
}

func (s *SQLiteStore) ListResults(ctx context.Context, runID string, onlyUnparsed bool, limit int) ([]model.NameRecord, error) {
	query := `SELECT run_id, row_num, original, cleaned, title, suffix, parsed, parse_type, first_name, middle_name, last_name
		FROM run_results WHERE run_id = ?`
	args := []any{runID}

	if onlyUnparsed {
		query += ` AND parsed = 0`
	}
	query += ` ORDER BY row_num LIMIT ?`
	args = append(args, listLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.NameRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

// helpers

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	return nil
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.Source, &r.Status, &r.Seen, &r.Parsed, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
