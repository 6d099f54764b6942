package parse

import (
	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// Warning is a non-fatal row-shape or coercion diagnostic, mirroring
// options.Warning (kept local to avoid the root package needing to
// reach back into this package's types at the wrong layer).
type Warning = options.Warning

// Result is one driver pass's output: a built column set plus
// row/warning bookkeeping. The Parallel Coordinator runs one Result
// per worker slice and merges them; the single-threaded path treats
// its own Result as the final one.
type Result struct {
	Columns  []*Column
	Rows     int
	Warnings []Warning
}

// Run drives the Type Inference & Promotion / Tape Builder / String
// Pool pipeline (spec.md §4.4-§4.6) over one contiguous byte range
// [start, end), one row at a time. rowEstimate seeds both the initial
// tape capacity and the pool-promotion cardinality check; pins
// supplies any user-pinned column TypeCodes (from `type`/`types`).
func Run(buf []byte, start, end int, colNames []string, o *options.Options, fp field.Parser, rowEstimate int, pins []tape.TypeCode) (*Result, error) {
	ncols := len(colNames)
	cols := make([]*Column, ncols)
	for i, name := range colNames {
		var pin tape.TypeCode
		if i < len(pins) {
			pin = pins[i]
		}
		cols[i] = NewColumn(name, rowEstimate, pin)
	}
	return run(buf, start, end, cols, o, fp, rowEstimate)
}

// RunShared is Run for one worker slice of the Parallel Coordinator
// (spec.md §4.7 step 3): each column's TypeCode cell is the one the
// shared columns expose, so promotions are visible to every worker
// parsing the same logical column. Pools remain thread-local.
func RunShared(buf []byte, start, end int, colNames []string, o *options.Options, fp field.Parser, rowEstimate int, pins []tape.TypeCode, shared []*Column) (*Result, error) {
	ncols := len(colNames)
	cols := make([]*Column, ncols)
	for i, name := range colNames {
		cols[i] = newColumnWithSharedType(name, rowEstimate, shared[i].SharedType())
	}
	return run(buf, start, end, cols, o, fp, rowEstimate)
}

func run(buf []byte, start, end int, cols []*Column, o *options.Options, fp field.Parser, rowEstimate int) (*Result, error) {
	ncols := len(cols)
	res := &Result{Columns: cols}
	pos := start
	row := 0
	var totalBytes int64

	for pos < end {
		if o.Limit > 0 && row >= o.Limit {
			break
		}

		bytesRemaining := int64(end - pos)
		avg := int64(0)
		if row > 0 {
			avg = totalBytes / int64(row)
		}
		for _, c := range cols {
			c.ensureRow(row, bytesRemaining, avg)
		}

		rowStart := pos
		col := 0
		rowTerminated := false
		for col < ncols && pos < end {
			length := end - pos
			outcome, err := writeCell(cols[col], row, buf, pos, length, o, fp, rowEstimate)
			if err != nil {
				if cerr, ok := err.(*CellError); ok {
					cerr.Row = row
					cerr.Col = col
					cerr.ByteOffset = int64(pos)
					return nil, cerr
				}
				if err == errCoerced {
					res.Warnings = appendWarning(res.Warnings, o, row, col, "value did not match pinned type; coerced to missing")
				} else {
					return nil, err
				}
			}
			pos += outcome.Consumed
			if outcome.Consumed <= 0 {
				pos = end
				rowTerminated = true
				break
			}
			col++
			if outcome.Status.Has(field.StatusNewlineTerminator) || outcome.Status.Has(field.StatusEOFTerminator) {
				rowTerminated = true
				break
			}
		}

		if col < ncols {
			// Too few fields: fill the rest missing, warn.
			for ; col < ncols; col++ {
				cols[col].setMissing()
				pl := tape.PackPosLen(true, false, false, uint64(pos), 0)
				cols[col].Tape.SetPosLen(row, pl)
			}
			res.Warnings = appendWarning(res.Warnings, o, row, -1, "row has fewer fields than columns")
		} else if !rowTerminated && pos < end {
			// All ncols columns were filled but the last one ended on a
			// delimiter, not a row terminator: extra fields remain.
			res.Warnings = appendWarning(res.Warnings, o, row, -1, "row has more fields than columns")
			pos = discardToRowEnd(buf, pos, end, o, fp)
		}

		consumed := int64(pos - rowStart)
		totalBytes += consumed
		row++
		res.Rows = row
		if o.ProgressHook != nil {
			o.ProgressHook(1, consumed)
		}
	}

	for _, c := range cols {
		c.Tape.Rows = row
		c.Tape.Truncate()
	}
	return res, nil
}

func appendWarning(w []Warning, o *options.Options, row, col int, msg string) []Warning {
	if o.SilenceWarnings {
		return w
	}
	wn := Warning{Row: row, Col: col, Message: msg}
	if o.OnWarning != nil {
		o.OnWarning(wn)
	}
	return append(w, wn)
}

// discardToRowEnd tokenizes (and drops) extra fields on an overlong
// row until a newline/EOF terminator is reached.
func discardToRowEnd(buf []byte, pos, end int, o *options.Options, fp field.Parser) int {
	for pos < end {
		res, err := fp.Parse(field.TypeString, buf, pos, end-pos, o)
		if err != nil || res.Consumed <= 0 {
			return end
		}
		pos += res.Consumed
		if res.Status.Has(field.StatusNewlineTerminator) || res.Status.Has(field.StatusEOFTerminator) {
			return pos
		}
	}
	return pos
}
