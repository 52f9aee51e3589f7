package batch

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nameparse/internal/model"
)

// Writer receives parsed records in row order.
type Writer interface {
	Write(rec model.NameRecord) error
	Flush() error
}

// Output formats accepted by NewWriter.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
)

// NewWriter returns a Writer for format (csv, jsonl or yaml).
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return NewCSVWriter(w)
	case FormatJSONL, "json":
		return &JSONLWriter{enc: json.NewEncoder(w)}, nil
	case FormatYAML:
		return &YAMLWriter{enc: yaml.NewEncoder(w)}, nil
	default:
		return nil, eris.Errorf("batch: unknown output format %q", format)
	}
}

// CSVWriter writes one CSV row per record with a header row first.
type CSVWriter struct {
	cw  *csv.Writer
	enc *csvutil.Encoder
}

// NewCSVWriter writes the header immediately so empty inputs still produce
// a valid file.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(model.NameRecord{}); err != nil {
		return nil, eris.Wrap(err, "batch: write csv header")
	}
	return &CSVWriter{cw: cw, enc: enc}, nil
}

func (w *CSVWriter) Write(rec model.NameRecord) error {
	return eris.Wrapf(w.enc.Encode(rec), "batch: encode csv row %d", rec.Row)
}

func (w *CSVWriter) Flush() error {
	w.cw.Flush()
	return eris.Wrap(w.cw.Error(), "batch: flush csv")
}

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct {
	enc *json.Encoder
}

func (w *JSONLWriter) Write(rec model.NameRecord) error {
	return eris.Wrapf(w.enc.Encode(rec), "batch: encode json row %d", rec.Row)
}

func (w *JSONLWriter) Flush() error { return nil }

// YAMLWriter writes one YAML document per record.
type YAMLWriter struct {
	enc *yaml.Encoder
}

func (w *YAMLWriter) Write(rec model.NameRecord) error {
	return eris.Wrapf(w.enc.Encode(rec), "batch: encode yaml row %d", rec.Row)
}

func (w *YAMLWriter) Flush() error {
	return eris.Wrap(w.enc.Close(), "batch: flush yaml")
}
