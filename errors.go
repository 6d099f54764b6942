package tapecsv

import (
	"errors"
	"fmt"
)

// ErrKind enumerates the error taxonomy from spec.md §7.
type ErrKind int

const (
	// ErrInvalidSource: source is not readable.
	ErrInvalidSource ErrKind = iota
	// ErrInvalidDelimiter: delimiter is \r, \n, \0, or conflicts with
	// ignore_repeated without explicit specification.
	ErrInvalidDelimiter
	// ErrInvalidType: a user-supplied type is not in the supported set.
	ErrInvalidType
	// ErrHeaderAfterData: header row is >= data row.
	ErrHeaderAfterData
	// ErrInvalidQuotedField: a quoted field was never closed. Always fatal.
	ErrInvalidQuotedField
	// ErrStrict: in strict mode, a field failed to parse as its
	// user-pinned type.
	ErrStrict
)

func (k ErrKind) String() string {
	switch k {
	case ErrInvalidSource:
		return "InvalidSource"
	case ErrInvalidDelimiter:
		return "InvalidDelimiter"
	case ErrInvalidType:
		return "InvalidType"
	case ErrHeaderAfterData:
		return "HeaderAfterData"
	case ErrInvalidQuotedField:
		return "InvalidQuotedField"
	case ErrStrict:
		return "StrictParseError"
	default:
		return "Unknown"
	}
}

// sentinel errors, one per ErrKind, in the plain-stdlib error style
// used throughout the teacher codebase (no errors library). The
// newConfigError/newCellError constructors below wrap the cause passed
// by their caller, not these sentinels.
var (
	errSourceUnreadable = errors.New("tapecsv: source is not readable")
	errBadDelimiter     = errors.New("tapecsv: invalid delimiter")
	errBadType          = errors.New("tapecsv: invalid type")
	errHeaderAfterData  = errors.New("tapecsv: header row must precede data row")
	errUnclosedQuote    = errors.New("tapecsv: quoted field was never closed")
	errStrictMismatch   = errors.New("tapecsv: strict mode: value did not match pinned type")
)

// Error carries the row, column, and byte-offset context for a fatal
// parse failure, per spec.md §6 "Exit behavior".
type Error struct {
	Kind       ErrKind
	Row        int
	Col        int
	ByteOffset int64
	Reason     string
	RequestID  string
	err        error
}

func (e *Error) Error() string {
	if e.Row >= 0 && e.Col >= 0 {
		return fmt.Sprintf("tapecsv: %s at row %d col %d (byte %d): %s", e.Kind, e.Row, e.Col, e.ByteOffset, e.Reason)
	}
	return fmt.Sprintf("tapecsv: %s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.err }

func newConfigError(kind ErrKind, base error, reason string) *Error {
	return &Error{Kind: kind, Row: -1, Col: -1, Reason: reason, err: base}
}

func newCellError(kind ErrKind, base error, row, col int, byteOffset int64, reason string) *Error {
	return &Error{Kind: kind, Row: row, Col: col, ByteOffset: byteOffset, Reason: reason, err: base}
}

// Warning is a non-fatal diagnostic surfaced through Options.OnWarning
// unless SilenceWarnings is set. ParseWarnings never abort a parse.
type Warning struct {
	Row     int
	Col     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("tapecsv: warning at row %d col %d: %s", w.Row, w.Col, w.Message)
}
