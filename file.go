package tapecsv

import (
	"time"

	"github.com/tapecsv/tapecsv/internal/tape"
)

// File is the produced read API (spec.md §6 "Produced file"): it owns
// the retained source buffer, column names/types, row/column counts,
// and each column's tape plus materialized pool-ref list. A File is
// immutable once returned by ParseFile.
type File struct {
	name string

	names []string
	types []tape.TypeCode
	rows  int
	cols  int

	columns []*Column

	requestID string
	warnings  []Warning
	parsedAt  time.Time

	buf    []byte
	closer func() error
}

// Name returns the source name (file path, or "" for buffers/streams).
func (f *File) Name() string { return f.name }

// Names returns the column names in order.
func (f *File) Names() []string { return append([]string(nil), f.names...) }

// Types returns each column's logical type name ("int64", "float64",
// "date", "datetime", "time", "bool", "string"); a POOL column reports
// "string", since pooling is an internal storage optimization, not a
// distinct logical type (spec.md §4.6).
func (f *File) Types() []string {
	out := make([]string, len(f.types))
	for i, t := range f.types {
		out[i] = logicalTypeName(t)
	}
	return out
}

// Rows returns the number of data rows.
func (f *File) Rows() int { return f.rows }

// Cols returns the number of columns.
func (f *File) Cols() int { return f.cols }

// Warnings returns every non-fatal diagnostic collected during the
// parse (empty if SilenceWarnings was set).
func (f *File) Warnings() []Warning { return f.warnings }

// ParsedAt returns when ParseFile produced this File.
func (f *File) ParsedAt() time.Time { return f.parsedAt }

// RequestID returns the correlation id: the caller-supplied one, or a
// uuid generated by ParseFile when none was given.
func (f *File) RequestID() string { return f.requestID }

// Column returns the i-th column's typed view.
func (f *File) Column(i int) *Column {
	if i < 0 || i >= len(f.columns) {
		return nil
	}
	return f.columns[i]
}

// ColumnByName returns the named column's typed view, or nil.
func (f *File) ColumnByName(name string) *Column {
	for i, n := range f.names {
		if n == name {
			return f.columns[i]
		}
	}
	return nil
}

// Close releases the retained source buffer (and any mmap backing
// it). A File must not be used after Close.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer()
	}
	return nil
}

func logicalTypeName(t tape.TypeCode) string {
	switch t.Base() {
	case tape.Int:
		return "int64"
	case tape.Float:
		return "float64"
	case tape.Date:
		return "date"
	case tape.DateTime:
		return "datetime"
	case tape.Time:
		return "time"
	case tape.Bool:
		return "bool"
	case tape.Pool, tape.String:
		return "string"
	default:
		return "string"
	}
}
