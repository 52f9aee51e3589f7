// Package model defines the records shared by the batch runner, store and API.
package model

import (
	"time"

	"github.com/sells-group/nameparse/internal/nameparse"
)

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one batch parse over a single input source.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	Status    RunStatus `json:"status" yaml:"status"`
	Seen      int64     `json:"seen" yaml:"seen"`
	Parsed    int64     `json:"parsed" yaml:"parsed"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ParseRate returns the fraction of seen names that parsed.
func (r Run) ParseRate() float64 {
	if r.Seen == 0 {
		return 0
	}
	return float64(r.Parsed) / float64(r.Seen)
}

// NameRecord is one parsed input row. Row is the 1-based data row number
// in the source, header excluded.
type NameRecord struct {
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty" csv:"-"`
	Row   int    `json:"row" yaml:"row" csv:"row"`

	nameparse.Result `yaml:",inline"`
}
