// Package batch parses every name of a source concurrently, writes the
// results in row order and records the run in the store.
package batch

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/nameparse"
	"github.com/sells-group/nameparse/internal/source"
	"github.com/sells-group/nameparse/internal/store"
)

// Options tunes a Runner.
type Options struct {
	Concurrency int // parse workers per chunk, default 8
	ChunkSize   int // rows parsed, written and stored together, default 500
}

// Summary describes a finished run.
type Summary struct {
	RunID    string        `json:"run_id,omitempty"`
	Source   string        `json:"source"`
	Seen     int64         `json:"seen"`
	Parsed   int64         `json:"parsed"`
	Duration time.Duration `json:"duration"`
}

// ParseRate returns the fraction of seen rows that parsed.
func (s Summary) ParseRate() float64 {
	if s.Seen == 0 {
		return 0
	}
	return float64(s.Parsed) / float64(s.Seen)
}

// Opener starts a record stream bound to ctx.
type Opener func(ctx context.Context) (<-chan source.Record, <-chan error)

// Runner parses record streams with a shared parser.
type Runner struct {
	parser *nameparse.Parser
	store  store.Store
	opts   Options
}

// NewRunner creates a Runner. st may be nil to skip persistence.
func NewRunner(p *nameparse.Parser, st store.Store, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	return &Runner{parser: p, store: st, opts: opts}
}

// Run streams src through open and parses every record. Rows that fail to
// parse are counted, not fatal. Source, writer and store errors abort the
// run and mark it failed.
func (r *Runner) Run(ctx context.Context, src string, open Opener, w Writer) (*Summary, error) {
	start := time.Now()
	sum := &Summary{Source: src}
	log := zap.L().With(zap.String("source", src))

	if r.store != nil {
		run, err := r.store.CreateRun(ctx, src)
		if err != nil {
			return nil, eris.Wrap(err, "batch: create run")
		}
		sum.RunID = run.ID
		log = log.With(zap.String("run_id", run.ID))
	}

	log.Info("batch: started",
		zap.Int("concurrency", r.opts.Concurrency),
		zap.Int("chunk_size", r.opts.ChunkSize),
	)

	streamCtx, cancel := context.WithCancel(ctx)
	recCh, errCh := open(streamCtx)
	err := r.consume(ctx, sum, recCh, errCh, w)
	cancel()
	drainRecords(recCh)
	if err == nil {
		err = w.Flush()
	}
	sum.Duration = time.Since(start)

	if err != nil {
		log.Error("batch: failed", zap.Int64("seen", sum.Seen), zap.Error(err))
		if r.store != nil {
			if ferr := r.store.FailRun(context.WithoutCancel(ctx), sum.RunID, sum.Seen, sum.Parsed, err); ferr != nil {
				log.Warn("batch: mark run failed", zap.Error(ferr))
			}
		}
		return sum, err
	}

	if r.store != nil {
		if err := r.store.CompleteRun(ctx, sum.RunID, sum.Seen, sum.Parsed); err != nil {
			return sum, eris.Wrap(err, "batch: complete run")
		}
	}

	log.Info("batch: complete",
		zap.Int64("seen", sum.Seen),
		zap.Int64("parsed", sum.Parsed),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}

func (r *Runner) consume(ctx context.Context, sum *Summary, recCh <-chan source.Record, errCh <-chan error, w Writer) error {
	chunk := make([]source.Record, 0, r.opts.ChunkSize)
	for rec := range recCh {
		chunk = append(chunk, rec)
		if len(chunk) < r.opts.ChunkSize {
			continue
		}
		if err := r.processChunk(ctx, sum, chunk, w); err != nil {
			return err
		}
		chunk = chunk[:0]
	}
	if len(chunk) > 0 {
		if err := r.processChunk(ctx, sum, chunk, w); err != nil {
			return err
		}
	}

	if err := <-errCh; err != nil {
		return eris.Wrap(err, "batch: read source")
	}
	return ctx.Err()
}

// processChunk parses a chunk concurrently into an index-addressed slice so
// output keeps input order.
func (r *Runner) processChunk(ctx context.Context, sum *Summary, chunk []source.Record, w Writer) error {
	out := make([]model.NameRecord, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, rec := range chunk {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = model.NameRecord{
				RunID:  sum.RunID,
				Row:    rec.Row,
				Result: r.parser.Parse(rec.Raw),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch: parse chunk")
	}

	for _, rec := range out {
		sum.Seen++
		if rec.Parsed {
			sum.Parsed++
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	if r.store != nil {
		if err := r.store.SaveResults(ctx, out); err != nil {
			return eris.Wrap(err, "batch: save results")
		}
	}

	zap.L().Debug("batch: chunk done",
		zap.Int("rows", len(out)),
		zap.Int64("seen", sum.Seen),
	)
	return nil
}

func drainRecords(ch <-chan source.Record) {
	for range ch {
	}
}
