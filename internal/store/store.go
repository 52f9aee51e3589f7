// Package store persists batch runs and their parsed rows.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nameparse/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch parsing.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, seen, parsed int64) error
	FailRun(ctx context.Context, runID string, seen, parsed int64, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveResults(ctx context.Context, records []model.NameRecord) error
	ListResults(ctx context.Context, runID string, onlyUnparsed bool, limit int) ([]model.NameRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const (
	defaultListLimit = 100
	resultsTable     = "run_results"
)

var resultColumns = []string{
	"run_id", "row_num", "original", "cleaned", "title", "suffix",
	"parsed", "parse_type", "first_name", "middle_name", "last_name",
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func resultRow(rec model.NameRecord) []any {
	return []any{
		rec.RunID, rec.Row, rec.Original, rec.Cleaned, rec.Title, rec.Suffix,
		rec.Parsed, rec.ParseType, rec.First, rec.Middle, rec.Last,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResult(row scannable) (model.NameRecord, error) {
	var rec model.NameRecord
	err := row.Scan(
		&rec.RunID, &rec.Row, &rec.Original, &rec.Cleaned, &rec.Title, &rec.Suffix,
		&rec.Parsed, &rec.ParseType, &rec.First, &rec.Middle, &rec.Last,
	)
	return rec, err
}
