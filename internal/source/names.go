package source

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Record is one name read from a source. Row is the 1-based data row,
// header excluded.
type Record struct {
	Row int
	Raw string
}

// Options selects the name column and the file layout.
type Options struct {
	// Column names the header cell holding names (case-insensitive). When
	// empty, ColumnIndex is used.
	Column      string
	ColumnIndex int
	// NoHeader treats the first row as data. Column must be empty.
	NoHeader  bool
	Delimiter rune
	Sheet     string
}

// Reader opens local paths, "-" for stdin, ftp:// and http(s):// URLs.
// Single-file ZIP archives are unpacked first.
type Reader struct {
	ftp   *FTPFetcher
	web   *HTTPFetcher
	stdin io.Reader
}

// NewReader creates a Reader that downloads ftp:// inputs with f and
// http(s):// inputs with h. Either may be nil.
func NewReader(f *FTPFetcher, h *HTTPFetcher) *Reader {
	return &Reader{ftp: f, web: h, stdin: os.Stdin}
}

// downloader fetches a remote input to a local file.
type downloader interface {
	DownloadToFile(ctx context.Context, rawURL, dest string) (int64, error)
}

// IsXLSX reports whether input names an XLSX workbook.
func IsXLSX(input string) bool {
	return strings.EqualFold(filepath.Ext(input), ".xlsx")
}

// Names streams the configured column of input as Records. Both channels
// are closed when the input is exhausted; at most one error is sent.
func (r *Reader) Names(ctx context.Context, input string, opts Options) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		if err := r.stream(ctx, input, opts, recCh); err != nil {
			errCh <- err
		}
	}()

	return recCh, errCh
}

func (r *Reader) stream(ctx context.Context, input string, opts Options, out chan<- Record) error {
	if opts.NoHeader && opts.Column != "" {
		return eris.New("source: column name requires a header row")
	}
	if opts.ColumnIndex < 0 {
		return eris.Errorf("source: column index %d out of range", opts.ColumnIndex)
	}

	local := input
	if scheme := remoteScheme(input); scheme != "" {
		tmp, cleanup, err := r.download(ctx, scheme, input)
		if err != nil {
			return err
		}
		defer cleanup()
		local = tmp
	}

	if IsZIP(local) {
		dir, err := os.MkdirTemp("", "nameparse-zip-*")
		if err != nil {
			return eris.Wrap(err, "source: create temp dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		local, err = extractZIPSingle(local, dir)
		if err != nil {
			return eris.Wrap(err, "source: unpack archive")
		}
	}

	var rowCh <-chan []string
	var rowErrCh <-chan error
	switch {
	case IsXLSX(local):
		rowCh, rowErrCh = StreamXLSX(ctx, local, XLSXOptions{SheetName: opts.Sheet})
	case local == "-":
		rowCh, rowErrCh = StreamCSV(ctx, r.stdin, CSVOptions{Delimiter: opts.Delimiter, LazyQuotes: true})
	default:
		f, err := os.Open(local)
		if err != nil {
			return eris.Wrap(err, "source: open input")
		}
		defer f.Close() //nolint:errcheck
		rowCh, rowErrCh = StreamCSV(ctx, f, CSVOptions{Delimiter: opts.Delimiter, LazyQuotes: true})
	}

	col := opts.ColumnIndex
	headerPending := !opts.NoHeader
	row := 0
	for cells := range rowCh {
		if headerPending {
			headerPending = false
			idx, err := columnIndex(cells, opts)
			if err != nil {
				drain(rowCh)
				return err
			}
			col = idx
			continue
		}

		row++
		rec := Record{Row: row}
		if col < len(cells) {
			rec.Raw = cells[col]
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			drain(rowCh)
			return eris.Wrap(ctx.Err(), "source: context cancelled")
		}
	}

	if err := <-rowErrCh; err != nil {
		return eris.Wrap(err, "source: read input")
	}

	zap.L().Debug("source: finished", zap.String("input", input), zap.Int("rows", row))
	return nil
}

// remoteScheme returns "ftp" or "http" for URLs the Reader downloads, and
// "" for local paths.
func remoteScheme(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.HasPrefix(lower, "ftp://"):
		return "ftp"
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return "http"
	}
	return ""
}

// RedactURL returns a remote input URL with user info, query and fragment
// removed. Local paths return an error.
func RedactURL(input string) (string, error) {
	if remoteScheme(input) == "" {
		return "", eris.Errorf("source: %q is not a remote url", input)
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", eris.Wrap(err, "source: parse input url")
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func (r *Reader) download(ctx context.Context, scheme, input string) (string, func(), error) {
	var d downloader
	switch {
	case scheme == "ftp" && r.ftp != nil:
		d = r.ftp
	case scheme == "http" && r.web != nil:
		d = r.web
	default:
		return "", nil, eris.Errorf("source: no %s fetcher configured", scheme)
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", nil, eris.Wrap(err, "source: parse input url")
	}
	name := path.Base(u.Path)

	tmp, err := os.CreateTemp("", "nameparse-*"+path.Ext(name))
	if err != nil {
		return "", nil, eris.Wrap(err, "source: create temp file")
	}
	tmp.Close() //nolint:errcheck

	cleanup := func() { os.Remove(tmp.Name()) } //nolint:errcheck

	n, err := d.DownloadToFile(ctx, input, tmp.Name())
	if err != nil {
		cleanup()
		return "", nil, eris.Wrapf(err, "source: %s download", scheme)
	}

	zap.L().Info("source: downloaded", zap.String("file", name), zap.Int64("bytes", n))
	return tmp.Name(), cleanup, nil
}

func columnIndex(header []string, opts Options) (int, error) {
	if opts.Column == "" {
		return opts.ColumnIndex, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(opts.Column)) {
			return i, nil
		}
	}
	return 0, eris.Errorf("source: column %q not found in header", opts.Column)
}

// drain consumes the remaining rows so the producer goroutine can exit.
func drain(ch <-chan []string) {
	for range ch {
	}
}
