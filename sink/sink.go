// Package sink writes query result batches to durable output files.
//
// The supported formats are a closed set, delimited text (CSV), plain
// text (TXT, tab-separated) and spreadsheet (XLSX), dispatched through
// the single Sink interface. A Sink keeps its file open across batches so
// a large result set streams to disk one page at a time.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format selects one of the supported output formats.
type Format string

const (
	CSV   Format = "csv"  // delimited text
	TXT   Format = "txt"  // plain text, tab-separated
	Excel Format = "xlsx" // spreadsheet
)

// Ext returns the file extension for the format, with the leading dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormat converts a format name ("csv", "txt", "xlsx") to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case CSV:
		return CSV, nil
	case TXT:
		return TXT, nil
	case Excel:
		return Excel, nil
	}
	return "", fmt.Errorf("sink: unsupported format %q", s)
}

// Sink writes batches of rows to one output file. WriteBatch may be
// called any number of times; the header is written at most once, before
// the first batch. Close flushes and releases the file.
type Sink interface {
	WriteBatch(header []string, rows [][]any) error
	Close() error
}

// Option adjusts sink behavior.
type Option func(*options)

type options struct {
	append    bool
	header    bool
	delimiter rune
}

// WithAppend opens the output file in append mode instead of truncating.
// Combine with WithoutHeader when the existing file already has one.
func WithAppend() Option {
	return func(o *options) { o.append = true }
}

// WithoutHeader suppresses the header row.
func WithoutHeader() Option {
	return func(o *options) { o.header = false }
}

// WithDelimiter sets the field delimiter for the CSV format. The default
// is a comma. Other formats ignore it.
func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// Open creates a sink for the given format and path. The format's
// extension is appended when path lacks it, and missing parent
// directories are created.
func Open(format Format, path string, opts ...Option) (Sink, error) {
	o := options{header: true, delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	if !strings.EqualFold(filepath.Ext(path), format.Ext()) {
		path += format.Ext()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sink: %w", err)
		}
	}

	switch format {
	case CSV:
		return openCSV(path, o)
	case TXT:
		return openTXT(path, o)
	case Excel:
		return openExcel(path, o)
	}
	return nil, fmt.Errorf("sink: unsupported format %q", format)
}

// formatValue renders one cell for the text formats.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(v)
}

func openFile(path string, append bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE
	if append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	return os.OpenFile(path, flag, 0o644)
}
