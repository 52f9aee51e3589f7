package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/db"
	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	retry   resilience.RetryConfig
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool, pool.Close), nil
}

func newPostgresStore(pool db.Pool, closeFn func()) *PostgresStore {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("postgres", "store")
	return &PostgresStore{pool: pool, closeFn: closeFn, retry: retry}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	seen       BIGINT NOT NULL DEFAULT 0,
	parsed     BIGINT NOT NULL DEFAULT 0,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
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
CREATE INDEX IF NOT EXISTS idx_run_results_unparsed ON run_results(run_id) WHERE NOT parsed;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, source string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			id, source, string(model.RunStatusRunning), now, now,
		)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Source:    source,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, seen, parsed int64) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, seen, parsed, "")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, seen, parsed int64, runErr error) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, seen, parsed, errString(runErr))
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, status model.RunStatus, seen, parsed int64, msg string) error {
	var affected int64
	err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE runs SET status = $1, seen = $2, parsed = $3, error = $4, updated_at = $5 WHERE id = $6`,
			string(status), seen, parsed, msg, time.Now().UTC(), runID,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return eris.Wrapf(err, "postgres: update run %s", runID)
	}
	if affected == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source, status, seen, parsed, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, seen, parsed, error, created_at, updated_at FROM runs`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE status = $1`
	}
	args = append(args, listLimit(filter.Limit), max(filter.Offset, 0))
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveResults bulk-loads records with COPY, retrying transient failures.
func (s *PostgresStore) SaveResults(ctx context.Context, records []model.NameRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = resultRow(rec)
	}

	n, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (int64, error) {
		return db.CopyFrom(ctx, s.pool, resultsTable, resultColumns, rows)
	})
	if err != nil {
		return eris.Wrap(err, "postgres: save results")
	}

	zap.L().Debug("postgres: saved results",
		zap.String("run_id", records[0].RunID),
		zap.Int64("count", n),
	)
	return nil
}

func (s *PostgresStore) ListResults(ctx context.Context, runID string, onlyUnparsed bool, limit int) ([]model.NameRecord, error) {
	query := `SELECT run_id, row_num, original, cleaned, title, suffix, parsed, parse_type, first_name, middle_name, last_name
		FROM run_results WHERE run_id = $1`
	if onlyUnparsed {
		query += ` AND NOT parsed`
	}
	query += ` ORDER BY row_num LIMIT $2`

	rows, err := s.pool.Query(ctx, query, runID, listLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var out []model.NameRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list results iterate")
}
