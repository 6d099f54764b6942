package parse

import (
	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// typeOrder is the inference attempt order for an EMPTY/MISSINGTYPE
// column (spec.md §4.4 step 2): Int64, Float64, Date, DateTime, Time,
// Bool, String. String always succeeds, so it terminates the scan.
var typeOrder = []field.Type{
	field.TypeInt64,
	field.TypeFloat64,
	field.TypeDate,
	field.TypeDateTime,
	field.TypeTime,
	field.TypeBool,
	field.TypeString,
}

var fieldToBase = map[field.Type]tape.TypeCode{
	field.TypeInt64:    tape.Int,
	field.TypeFloat64:  tape.Float,
	field.TypeDate:     tape.Date,
	field.TypeDateTime: tape.DateTime,
	field.TypeTime:     tape.Time,
	field.TypeBool:     tape.Bool,
	field.TypeString:   tape.String,
}

var baseToField = map[tape.TypeCode]field.Type{
	tape.Int:      field.TypeInt64,
	tape.Float:     field.TypeFloat64,
	tape.Date:      field.TypeDate,
	tape.DateTime:  field.TypeDateTime,
	tape.Time:      field.TypeTime,
	tape.Bool:      field.TypeBool,
	tape.String:    field.TypeString,
	tape.Pool:      field.TypeString,
}

// cellOutcome carries what writeCell needs to know to advance the
// caller's scan position regardless of how the cell resolved.
type cellOutcome struct {
	Consumed   int
	ContentPos int
	ContentLen int
	Status     field.Status
}

// writeCell implements spec.md §4.4 steps 1-5 for one (row, column)
// cell: it drives the Field Parser through the inference order (or
// the single user-pinned type), applies the typemap rewrite, performs
// any INT→FLOAT or *→STRING promotion, and writes both tape slots.
//
// rowEstimate is used for the POOL→STRING cardinality check.
func writeCell(col *Column, row int, buf []byte, pos, length int, o *options.Options, fp field.Parser, rowEstimate int) (cellOutcome, error) {
	cur := col.Type()

	if cur.HasUser() {
		ft := baseToField[cur.Base()]
		res, err := fp.Parse(ft, buf, pos, length, o)
		if err != nil {
			return cellOutcome{}, err
		}
		if res.Status.Has(field.StatusInvalidQuote) {
			return cellOutcome{Consumed: res.Consumed, ContentPos: res.ContentPos, ContentLen: res.ContentLen, Status: res.Status}, newInvalidQuoteErr(row, col)
		}
		out := cellOutcome{Consumed: res.Consumed, ContentPos: res.ContentPos, ContentLen: res.ContentLen, Status: res.Status}
		if res.Status.Has(field.StatusSentinel) {
			col.setMissing()
			writeMissing(col, row, res)
			return out, nil
		}
		if !res.Status.Has(field.StatusOK) {
			if o.Strict {
				return out, newStrictErr(row, col)
			}
			col.setMissing()
			writeMissing(col, row, res)
			return out, errCoerced
		}
		writeTyped(col, row, cur.Base(), res, o)
		return out, nil
	}

	// EMPTY/MISSINGTYPE: try the inference order. A concrete current
	// base type restricts the attempt to that type first; on failure
	// we fall through to promotion handling below.
	base := cur.Base()
	if base == tape.Empty || base == tape.MissingType {
		for _, ft := range typeOrder {
			res, err := fp.Parse(ft, buf, pos, length, o)
			if err != nil {
				return cellOutcome{}, err
			}
			out := cellOutcome{Consumed: res.Consumed, ContentPos: res.ContentPos, ContentLen: res.ContentLen, Status: res.Status}
			if res.Status.Has(field.StatusInvalidQuote) {
				return out, newInvalidQuoteErr(row, col)
			}
			if res.Status.Has(field.StatusSentinel) {
				col.setMissing()
				col.promote(tape.MissingType.WithMissing())
				writeMissing(col, row, res)
				return out, nil
			}
			if res.Status.Has(field.StatusOK) {
				base := fieldToBase[ft]
				if ft == field.TypeString && o.PoolThreshold > 0 {
					base = tape.Pool
				}
				committed := applyTypeMap(o, base)
				col.promote(committed)
				writeTyped(col, row, committed, res, o)
				maybePromotePool(col, o, rowEstimate)
				return out, nil
			}
			// ft failed outright; TypeString never fails, so this loop
			// always terminates.
		}
	}

	// Concrete type already committed: try it first.
	ft := baseToField[base]
	res, err := fp.Parse(ft, buf, pos, length, o)
	if err != nil {
		return cellOutcome{}, err
	}
	out := cellOutcome{Consumed: res.Consumed, ContentPos: res.ContentPos, ContentLen: res.ContentLen, Status: res.Status}
	if res.Status.Has(field.StatusInvalidQuote) {
		return out, newInvalidQuoteErr(row, col)
	}
	if res.Status.Has(field.StatusSentinel) {
		col.setMissing()
		writeMissing(col, row, res)
		return out, nil
	}
	if res.Status.Has(field.StatusOK) {
		writeTyped(col, row, base, res, o)
		if base == tape.Pool {
			maybePromotePool(col, o, rowEstimate)
		}
		return out, nil
	}

	// Does not parse as the current type: attempt promotion.
	if base == tape.Int {
		fres, ferr := fp.Parse(field.TypeFloat64, buf, pos, length, o)
		if ferr != nil {
			return cellOutcome{}, ferr
		}
		if fres.Status.Has(field.StatusOK) {
			promoteIntToFloat(col)
			col.promote(tape.Float)
			writeTyped(col, row, tape.Float, fres, o)
			return cellOutcome{Consumed: fres.Consumed, ContentPos: fres.ContentPos, ContentLen: fres.ContentLen, Status: fres.Status}, nil
		}
	}

	// Universal sink: fall back to STRING. With pooling on, the cell is
	// still interned in the pool, but MonotonicMax resolves a typed base
	// against Pool to String, so the column itself ends up STRING.
	sres, serr := fp.Parse(field.TypeString, buf, pos, length, o)
	if serr != nil {
		return cellOutcome{}, serr
	}
	promoteToString(col, buf)
	sink := tape.String
	if o.PoolThreshold > 0 && base != tape.String {
		sink = tape.Pool
	}
	col.promote(sink)
	writeTyped(col, row, sink, sres, o)
	if sink == tape.Pool {
		maybePromotePool(col, o, rowEstimate)
	}
	return cellOutcome{Consumed: sres.Consumed, ContentPos: sres.ContentPos, ContentLen: sres.ContentLen, Status: sres.Status}, nil
}

// applyTypeMap rewrites a just-inferred base type through the
// caller's type_map option (spec.md §4.4 step 5).
func applyTypeMap(o *options.Options, inferred tape.TypeCode) tape.TypeCode {
	if len(o.TypeMap) == 0 {
		return inferred
	}
	name := typeCodeName(inferred)
	if to, ok := o.TypeMap[name]; ok {
		if code, err := tape.ValidateUserType(to); err == nil {
			return code
		}
	}
	return inferred
}

func typeCodeName(t tape.TypeCode) string {
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
	case tape.String, tape.Pool:
		return "string"
	default:
		return ""
	}
}

// writeMissing writes a poslen slot with the missing bit set; the
// value slot is left undefined (spec.md §4.5).
func writeMissing(col *Column, row int, res field.Result) {
	pl := tape.PackPosLen(true, false, res.Status.Has(field.StatusEscapePresent), uint64(res.ContentPos), uint64(res.ContentLen))
	col.Tape.SetPosLen(row, pl)
}

// writeTyped packs a successfully parsed value into both tape slots
// for the column's (possibly just-promoted) base type.
func writeTyped(col *Column, row int, base tape.TypeCode, res field.Result, o *options.Options) {
	escape := res.Status.Has(field.StatusEscapePresent)
	pl := tape.PackPosLen(false, base == tape.Int, escape, uint64(res.ContentPos), uint64(res.ContentLen))
	col.Tape.SetPosLen(row, pl)

	switch base {
	case tape.Int:
		col.Tape.SetValue(row, tape.PackInt64(res.Int64))
	case tape.Float:
		col.Tape.SetValue(row, tape.PackFloat64(res.Float64))
	case tape.Date:
		col.Tape.SetValue(row, tape.PackDate(res.DateDays))
	case tape.DateTime:
		col.Tape.SetValue(row, tape.PackDateTime(res.DateTimeNs))
	case tape.Time:
		col.Tape.SetValue(row, tape.PackTime(res.TimeNs))
	case tape.Bool:
		col.Tape.SetValue(row, tape.PackBool(res.Bool))
	case tape.Pool:
		ref := col.Pool.Insert(res.Str)
		col.Tape.SetValue(row, tape.PackRef(ref))
	case tape.String:
		// Plain STRING columns reconstruct from the buffer via the
		// poslen slot; no value slot payload is needed, but pool
		// columns that have not yet been promoted still go through
		// the Pool branch above. A fresh STRING column (pool
		// disabled) stores no ref.
	}
}

// maybePromotePool checks the §4.6 cardinality rule and promotes a
// POOL column to plain STRING when exceeded.
func maybePromotePool(col *Column, o *options.Options, rowEstimate int) {
	if col.Type().Base() != tape.Pool {
		return
	}
	if shouldPromotePoolToString(o, col.Pool, rowEstimate) {
		promoteToString(col, nil)
		col.promote(tape.String)
	}
}

// promoteIntToFloat re-encodes every previously written value slot in
// the column from Int64 bit pattern to the was-int flag convention:
// rather than eagerly rewriting each slot's bits, we flip the
// wasInt bit on every already-written poslen slot, so
// UnpackFloat64FromPossiblyInt widens it lazily on read. This is the
// "position/length sidecar remembers each prior row's slot" behavior
// from spec.md §4.4 step 4, implemented without a second array since
// the poslen slot already carries the per-row flag.
func promoteIntToFloat(col *Column) {
	t := col.Tape
	for i := 0; i < t.Rows; i++ {
		raw := t.RawPosLenAt(i)
		pl := tape.UnpackPosLen(raw)
		if pl.Missing || pl.WasInt {
			continue
		}
		t.SetPosLen(i, tape.PackPosLen(false, true, pl.Escape, pl.Offset, pl.Length))
	}
}

// promoteToString converts every previously written row in the column
// to a buffer-backed STRING cell: the poslen slot's offset/length
// already identify the original field bytes (spec.md §9: the poslen
// slot doubles as the sidecar), so no value-slot rewrite is needed for
// non-pooled rows. A column promoting out of POOL instead keeps its
// already-pooled rows as refs, since a POOL→STRING promotion leaves
// the pool's ref assignments valid; buf is unused in that case.
func promoteToString(col *Column, buf []byte) {
	_ = buf // offsets/lengths are already correct in the poslen slots
}
