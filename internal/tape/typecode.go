// Package tape implements the packed columnar storage ("tape") used to
// materialize parsed CSV cells lazily, the TypeCode lattice used for
// per-column type inference, and the string pool used to deduplicate
// repeated string values.
package tape

import "fmt"

// TypeCode is a small bitset identifying a column's current base type
// plus two orthogonal flags (Missing, User). Base-type bits are
// mutually exclusive; flags may be OR'd onto any base type.
type TypeCode uint16

const (
	Empty TypeCode = 1 << iota
	MissingType
	Int
	Float
	Date
	DateTime
	Time
	Bool
	Pool
	String

	// Missing records that the column has seen at least one sentinel
	// (missing) value. Once set it persists across promotions.
	Missing
	// User marks a TypeCode as pinned by the caller; inference must
	// not promote a user-pinned column.
	User
)

const baseMask = Empty | MissingType | Int | Float | Date | DateTime | Time | Bool | Pool | String
const flagMask = Missing | User

// Base returns the TypeCode with flag bits cleared.
func (t TypeCode) Base() TypeCode { return t & baseMask }

// HasMissing reports whether the Missing flag is set.
func (t TypeCode) HasMissing() bool { return t&Missing != 0 }

// HasUser reports whether the User flag is set.
func (t TypeCode) HasUser() bool { return t&User != 0 }

// WithMissing returns t with the Missing flag set.
func (t TypeCode) WithMissing() TypeCode { return t | Missing }

// WithUser returns t with the User flag set.
func (t TypeCode) WithUser() TypeCode { return t | User }

// WithBase returns t with its base type replaced by base, preserving
// flags.
func (t TypeCode) WithBase(base TypeCode) TypeCode {
	return (t & flagMask) | (base & baseMask)
}

// IsConcrete reports whether the column has committed to a real type
// (anything other than Empty/MissingType).
func (t TypeCode) IsConcrete() bool {
	b := t.Base()
	return b != Empty && b != MissingType && b != 0
}

func (t TypeCode) String() string {
	base := "Unknown"
	switch t.Base() {
	case Empty:
		base = "Empty"
	case MissingType:
		base = "MissingType"
	case Int:
		base = "Int64"
	case Float:
		base = "Float64"
	case Date:
		base = "Date"
	case DateTime:
		base = "DateTime"
	case Time:
		base = "Time"
	case Bool:
		base = "Bool"
	case Pool:
		base = "Pool"
	case String:
		base = "String"
	}
	if t.HasMissing() {
		base += "|Missing"
	}
	if t.HasUser() {
		base += "|User"
	}
	return base
}

// promoteRank gives each base type a position in the promotion
// lattice; a higher rank means "further toward the universal sink"
// (String). Promotion only ever moves to an equal-or-higher rank for
// the specific transitions the spec allows (Int->Float, any->String);
// it is not a total order used for arbitrary comparisons.
var promoteRank = map[TypeCode]int{
	Empty:       -1,
	MissingType: 0,
	Int:         1,
	Float:       2,
	Date:        1,
	DateTime:    1,
	Time:        1,
	Bool:        1,
	Pool:        1,
	String:      3,
}

// CanPromote reports whether transitioning a column's base type from
// "from" to "to" is a legal, monotonic move up the lattice.
func CanPromote(from, to TypeCode) bool {
	from, to = from.Base(), to.Base()
	if from == to {
		return true
	}
	if from == Int && to == Float {
		return true
	}
	if to == String {
		return true
	}
	return false
}

// MonotonicMax returns the "larger" of two base TypeCodes per the
// promotion lattice, used for the atomically-mutated shared TypeCode
// vector (a plain max-store is safe because promotions only move up).
func MonotonicMax(a, b TypeCode) TypeCode {
	ab, bb := a.Base(), b.Base()
	if ab == bb {
		return a | (b & flagMask)
	}
	ra, rb := promoteRank[ab], promoteRank[bb]
	switch {
	case ra > rb:
		return a | (b & flagMask)
	case rb > ra:
		return b | (a & flagMask)
	default:
		// Same rank, different base (e.g. Date vs Bool): neither
		// dominates under the lattice defined here, so fall back to
		// the universal sink to stay safe rather than guess.
		return ((a | b) & flagMask) | String
	}
}

// ValidateUserType reports whether a caller-declared type name maps to
// a supported base TypeCode.
func ValidateUserType(name string) (TypeCode, error) {
	switch name {
	case "int64", "int", "Int64":
		return Int, nil
	case "float64", "float", "Float64":
		return Float, nil
	case "date", "Date":
		return Date, nil
	case "datetime", "DateTime":
		return DateTime, nil
	case "time", "Time":
		return Time, nil
	case "bool", "boolean", "Bool":
		return Bool, nil
	case "string", "String":
		return String, nil
	default:
		return 0, fmt.Errorf("tape: invalid type %q", name)
	}
}
