// Package field specifies the Field Parser external contract
// (spec.md §4.3, §6): given a target type, a buffer, a position, an
// available length, and an Options record, parse one field and report
// the parsed value, a status, and the byte accounting needed by the
// Tape Builder. Implementers may choose any implementation; this
// package also ships a dependency-free Default implementation
// sufficient to satisfy spec.md §8's testable properties. Date/number
// sub-parsing is intentionally minimal here since §1 treats the field
// parser as a black box external collaborator.
package field

import "github.com/tapecsv/tapecsv/internal/options"

// Type is the target type requested of Parse.
type Type int

const (
	TypeInt64 Type = iota
	TypeFloat64
	TypeDate
	TypeDateTime
	TypeTime
	TypeBool
	TypeString
)

// Status is a bitset of flags describing how a field parse went.
type Status uint16

const (
	StatusOK Status = 1 << iota
	StatusSentinel
	StatusInvalidQuote
	StatusEscapePresent
	StatusNewlineTerminator
	StatusDelimTerminator
	StatusEOFTerminator
)

func (s Status) Has(flag Status) bool { return s&flag != 0 }

// Result is the outcome of one Parse call.
type Result struct {
	Status Status

	// ContentPos is the field's content position: after any opening
	// quote/whitespace, as an absolute offset into the source buffer.
	ContentPos int
	// ContentLen is the field's content length: before any closing
	// quote/whitespace.
	ContentLen int
	// Consumed is the total number of bytes consumed starting from the
	// position Parse was called with, including the delimiter or
	// newline terminator.
	Consumed int

	Int64      int64
	Float64    float64
	Bool       bool
	DateDays   int32 // days since Unix epoch
	DateTimeNs int64 // nanoseconds since Unix epoch
	TimeNs     int64 // nanoseconds since midnight
	Str        string
}

// Parser is the Field Parser external contract.
type Parser interface {
	Parse(typ Type, buf []byte, pos, length int, o *options.Options) (Result, error)
}
