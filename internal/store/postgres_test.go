package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameparse/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := newPostgresStore(mock, nil)
	s.retry.InitialBackoff = time.Millisecond
	s.retry.MaxBackoff = time.Millisecond
	return s, mock
}

var runColumns = []string{"id", "source", "status", "seen", "parsed", "error", "created_at", "updated_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS run_results`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "names.csv", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "names.csv")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WillReturnError(fmt.Errorf("permission denied"))

	_, err := s.CreateRun(context.Background(), "names.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1`).
		WithArgs("complete", int64(10), int64(8), "", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.CompleteRun(context.Background(), "run-1", 10, 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1`).
		WithArgs("failed", int64(0), int64(0), "boom", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FailRun(context.Background(), "missing", 0, 0, errors.New("boom"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, source, status, seen, parsed, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(mock.NewRows(runColumns).
			AddRow("run-1", "names.csv", model.RunStatusComplete, int64(4), int64(3), "", now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "names.csv", run.Source)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.InDelta(t, 0.75, run.ParseRate(), 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM runs WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("failed", 100, 0).
		WillReturnRows(mock.NewRows(runColumns).
			AddRow("run-2", "b.csv", model.RunStatusFailed, int64(1), int64(0), "eof", now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "eof", runs[0].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_NoFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(5, 10).
		WillReturnRows(mock.NewRows(runColumns))

	runs, err := s.ListRuns(context.Background(), RunFilter{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"run_results"}, resultColumns).WillReturnResult(2)

	records := parsedRecords("run-1", "Ryan Nagle", "Ryan")
	require.NoError(t, s.SaveResults(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResults_RetriesTransient(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"run_results"}, resultColumns).
		WillReturnError(fmt.Errorf("read: connection reset by peer"))
	mock.ExpectCopyFrom(pgx.Identifier{"run_results"}, resultColumns).WillReturnResult(1)

	require.NoError(t, s.SaveResults(context.Background(), parsedRecords("run-1", "Ryan Nagle")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResults_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	require.NoError(t, s.SaveResults(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListResults_Unparsed(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM run_results WHERE run_id = \$1 AND NOT parsed ORDER BY row_num LIMIT \$2`).
		WithArgs("run-1", 50).
		WillReturnRows(mock.NewRows(resultColumns).
			AddRow("run-1", 2, "Ryan", "Ryan", "", "", false, 0, "", "", ""))

	got, err := s.ListResults(context.Background(), "run-1", true, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Row)
	assert.Equal(t, "Ryan", got[0].Original)
	assert.False(t, got[0].Parsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	closed := false
	s := newPostgresStore(nil, func() { closed = true })
	require.NoError(t, s.Close())
	assert.True(t, closed)
}
