package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/batch"
	"github.com/sells-group/nameparse/internal/config"
	"github.com/sells-group/nameparse/internal/source"
	"github.com/sells-group/nameparse/internal/store"
)

// batchFlags holds the batch command's flag values.
type batchFlags struct {
	input       string
	column      string
	columnIndex int
	noHeader    bool
	sheet       string
	delimiter   string
	output      string
	format      string
	store       bool
	concurrency int
}

var batchOpts batchFlags

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Parse every row of a CSV or XLSX source",
	Long:  "Reads a name column from a local CSV/XLSX file (optionally zipped), stdin, or an ftp:// or http(s):// URL, parses each row concurrently and writes the results in input order. With --store the run and its rows are persisted.",
	Example: `  nameparse batch --input contacts.csv --column full_name --output parsed.csv
  nameparse batch --input ftp://ftp.example.com/export/names.xlsx --column Name --format jsonl
  cat names.txt | nameparse batch --input - --no-header --store`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if batchOpts.concurrency > 0 {
			cfg.Batch.Concurrency = batchOpts.concurrency
		}
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sum, err := runBatch(ctx, cfg, batchOpts, cmd.OutOrStdout())
		if sum != nil {
			printSummary(cmd.ErrOrStderr(), sum)
		}
		return err
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchOpts.input, "input", "", "input CSV/XLSX/ZIP path, - for stdin, or ftp:// / http(s):// URL")
	f.StringVar(&batchOpts.column, "column", "", "header name of the name column")
	f.IntVar(&batchOpts.columnIndex, "column-index", 0, "0-based name column when --column is not set")
	f.BoolVar(&batchOpts.noHeader, "no-header", false, "treat the first row as data")
	f.StringVar(&batchOpts.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	f.StringVar(&batchOpts.delimiter, "delimiter", ",", "CSV field delimiter")
	f.StringVar(&batchOpts.output, "output", "-", "output path, - for stdout")
	f.StringVar(&batchOpts.format, "format", batch.FormatCSV, "output format: csv, jsonl or yaml")
	f.BoolVar(&batchOpts.store, "store", false, "persist the run and its results to the configured store")
	f.IntVar(&batchOpts.concurrency, "concurrency", 0, "parse workers (overrides batch.concurrency)")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

// runBatch wires source, parser, writer and optional store for one run.
// stdout receives the results when the output flag is "-".
func runBatch(ctx context.Context, c *config.Config, f batchFlags, stdout io.Writer) (*batch.Summary, error) {
	delim, err := parseDelimiter(f.delimiter)
	if err != nil {
		return nil, err
	}

	p, err := c.Parser.NewParser()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if f.store {
		st, err = initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		defer st.Close() //nolint:errcheck
	}

	out := stdout
	if f.output != "" && f.output != "-" {
		file, err := os.Create(f.output)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: create output %s", f.output)
		}
		defer file.Close() //nolint:errcheck
		out = file
	}

	w, err := batch.NewWriter(f.format, out)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(c.FTP.TimeoutSecs) * time.Second
	reader := source.NewReader(
		source.NewFTPFetcher(source.FTPOptions{Timeout: timeout}),
		source.NewHTTPFetcher(source.HTTPOptions{Timeout: 2 * timeout}),
	)
	opts := source.Options{
		Column:      f.column,
		ColumnIndex: f.columnIndex,
		NoHeader:    f.noHeader,
		Delimiter:   delim,
		Sheet:       f.sheet,
	}
	open := func(ctx context.Context) (<-chan source.Record, <-chan error) {
		return reader.Names(ctx, f.input, opts)
	}

	runner := batch.NewRunner(p, st, batch.Options{
		Concurrency: c.Batch.Concurrency,
		ChunkSize:   c.Batch.StoreChunk,
	})

	zap.L().Debug("batch: opening source",
		zap.String("format", f.format),
		zap.Bool("store", st != nil),
	)
	return runner.Run(ctx, sourceLabel(f.input), open, w)
}

// parseDelimiter accepts a single character, or "tab" / "\t".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, eris.Errorf("batch: delimiter %q must be a single character", s)
	}
	return r[0], nil
}

// sourceLabel is the source name recorded on the run. URL credentials
// and query strings are stripped.
func sourceLabel(input string) string {
	if input == "-" {
		return "stdin"
	}
	if target, err := source.RedactURL(input); err == nil {
		return target
	}
	return input
}

func printSummary(w io.Writer, s *batch.Summary) {
	if s.RunID != "" {
		_, _ = fmt.Fprintf(w, "run:      %s\n", s.RunID)
	}
	_, _ = fmt.Fprintf(w, "source:   %s\n", s.Source)
	_, _ = fmt.Fprintf(w, "seen:     %d\n", s.Seen)
	_, _ = fmt.Fprintf(w, "parsed:   %d (%.1f%%)\n", s.Parsed, s.ParseRate()*100)
	_, _ = fmt.Fprintf(w, "duration: %s\n", s.Duration.Round(time.Millisecond))
}
