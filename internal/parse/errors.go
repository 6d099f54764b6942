package parse

import (
	"errors"
	"fmt"
)

// Kind mirrors the subset of the root package's ErrKind taxonomy that
// can originate inside the parse driver. Defined locally (rather than
// imported) so this package stays independent of the root package,
// which itself imports parse to build a File.
type Kind int

const (
	KindInvalidQuotedField Kind = iota
	KindStrict
)

// CellError carries the row/column/byte context for a fatal failure
// encountered while building the tape, per spec.md §7. The root
// package translates this into a *tapecsv.Error at the ParseFile
// boundary.
type CellError struct {
	Kind       Kind
	Row        int
	Col        int
	ByteOffset int64
	Reason     string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("parse: row %d col %d (byte %d): %s", e.Row, e.Col, e.ByteOffset, e.Reason)
}

// errCoerced is a sentinel (not a fatal error) signaling that a
// non-strict type mismatch was coerced to missing; callers use it only
// to decide whether to emit a ParseWarning, never to abort.
var errCoerced = errors.New("parse: value coerced to missing")

func newInvalidQuoteErr(row int, col *Column) *CellError {
	return &CellError{Kind: KindInvalidQuotedField, Row: row, Reason: fmt.Sprintf("unterminated quoted field in column %q", col.Name)}
}

func newStrictErr(row int, col *Column) *CellError {
	return &CellError{Kind: KindStrict, Row: row, Reason: fmt.Sprintf("value did not match pinned type for column %q", col.Name)}
}
