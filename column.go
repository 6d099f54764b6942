package tapecsv

import (
	"time"

	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// Column is a typed, random-access view over one column's tape. Get
// (and String, for the POOL check) switch on the column's type on
// every call; Int64, Float64 and Bool do not consult the type at all
// and decode the value slot as that type.
type Column struct {
	name string
	typ  tape.TypeCode
	t    *tape.Tape
	refs []string // only populated for POOL-backed columns
	buf  []byte   // the File's retained source buffer

	escapeByte byte
	closeQuote byte
}

// Name returns the column's name.
func (c *Column) Name() string { return c.name }

// Type returns the column's final logical type name.
func (c *Column) Type() string { return logicalTypeName(c.typ) }

// Len returns the number of rows.
func (c *Column) Len() int { return c.t.Rows }

// IsMissing reports whether row i is missing in this column.
func (c *Column) IsMissing(i int) bool { return c.t.PosLenAt(i).Missing }

// Get returns row i's value as an interface{} honoring the column's
// final type, or nil if missing (spec.md §6 "get(col, row) semantics").
func (c *Column) Get(i int) interface{} {
	pl := c.t.PosLenAt(i)
	if pl.Missing {
		return nil
	}
	v := c.t.ValueAt(i)
	switch c.typ.Base() {
	case tape.Int:
		return tape.UnpackInt64(v)
	case tape.Float:
		return tape.UnpackFloat64FromPossiblyInt(pl, v)
	case tape.Bool:
		return tape.UnpackBool(v)
	case tape.Date:
		return epochDay(tape.UnpackDate(v))
	case tape.DateTime:
		return time.Unix(0, tape.UnpackDateTime(v)).UTC()
	case tape.Time:
		return time.Duration(tape.UnpackTime(v))
	case tape.Pool:
		ref := tape.UnpackRef(v)
		if ref == 0 || int(ref) > len(c.refs) {
			return ""
		}
		return c.refs[ref-1]
	case tape.String:
		return c.stringFromBuffer(pl)
	default:
		return nil
	}
}

// Int64 returns row i as an int64 and whether it was present. Only
// meaningful for an Int64 column.
func (c *Column) Int64(i int) (int64, bool) {
	pl := c.t.PosLenAt(i)
	if pl.Missing {
		return 0, false
	}
	return tape.UnpackInt64(c.t.ValueAt(i)), true
}

// Float64 returns row i as a float64 and whether it was present.
// Handles the INT→FLOAT promotion widening transparently.
func (c *Column) Float64(i int) (float64, bool) {
	pl := c.t.PosLenAt(i)
	if pl.Missing {
		return 0, false
	}
	return tape.UnpackFloat64FromPossiblyInt(pl, c.t.ValueAt(i)), true
}

// Bool returns row i as a bool and whether it was present.
func (c *Column) Bool(i int) (bool, bool) {
	pl := c.t.PosLenAt(i)
	if pl.Missing {
		return false, false
	}
	return tape.UnpackBool(c.t.ValueAt(i)), true
}

// String returns row i's field bytes as a string (reconstructing from
// the source buffer for plain STRING columns, or from the pool's refs
// array for POOL columns) and whether it was present.
func (c *Column) String(i int) (string, bool) {
	pl := c.t.PosLenAt(i)
	if pl.Missing {
		return "", false
	}
	if c.typ.Base() == tape.Pool {
		ref := tape.UnpackRef(c.t.ValueAt(i))
		if ref == 0 || int(ref) > len(c.refs) {
			return "", false
		}
		return c.refs[ref-1], true
	}
	return c.stringFromBuffer(pl), true
}

func (c *Column) stringFromBuffer(pl tape.PosLen) string {
	start := int(pl.Offset)
	end := start + int(pl.Length)
	if start < 0 || end > len(c.buf) || start > end {
		return ""
	}
	raw := c.buf[start:end]
	if pl.Escape {
		return string(field.Unescape(raw, c.escapeByte, c.closeQuote))
	}
	return string(raw)
}

// epochDay converts days-since-Unix-epoch into the corresponding
// midnight UTC time.Time.
func epochDay(days int32) time.Time {
	return time.Unix(int64(days)*86400, 0).UTC()
}
