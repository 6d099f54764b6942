package parse

import (
	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// RunTransposed implements spec.md §4.8: rows and columns are swapped,
// so each physical line in [start, end) is one logical column. One
// byte-position cursor advances through each line independently;
// "row" i is the i-th field on every line. Threading is always
// disabled in this mode (the caller must not also invoke the Parallel
// Coordinator).
func RunTransposed(buf []byte, start, end int, colNames []string, o *options.Options, fp field.Parser, rowEstimate int, pins []tape.TypeCode) (*Result, error) {
	ncols := len(colNames)
	cols := make([]*Column, ncols)
	for i, name := range colNames {
		var pin tape.TypeCode
		if i < len(pins) {
			pin = pins[i]
		}
		cols[i] = NewColumn(name, rowEstimate, pin)
	}
	res := &Result{Columns: cols}

	pos := start
	maxRows := 0
	for ci := 0; ci < ncols && pos < end; ci++ {
		lineStart, lineEnd, next := transposedLineBounds(buf, pos, end, o.OpenQuote, o.CloseQuote)
		col := cols[ci]

		fpos := lineStart
		row := 0
		for fpos < lineEnd {
			col.ensureRow(row, int64(lineEnd-fpos), 0)
			outcome, err := writeCell(col, row, buf, fpos, lineEnd-fpos, o, fp, rowEstimate)
			if err != nil {
				if cerr, ok := err.(*CellError); ok {
					cerr.Row = row
					cerr.Col = ci
					cerr.ByteOffset = int64(fpos)
					return nil, cerr
				}
				if err == errCoerced {
					res.Warnings = appendWarning(res.Warnings, o, row, ci, "value did not match pinned type; coerced to missing")
				} else {
					return nil, err
				}
			}
			if outcome.Consumed <= 0 {
				break
			}
			fpos += outcome.Consumed
			row++
			if outcome.Status.Has(field.StatusNewlineTerminator) || outcome.Status.Has(field.StatusEOFTerminator) {
				break
			}
		}
		col.Tape.Rows = row
		if row > maxRows {
			maxRows = row
		}
		if o.ProgressHook != nil {
			o.ProgressHook(int64(row), int64(lineEnd-lineStart))
		}
		pos = next
	}

	// Columns (lines) of unequal length: pad the short ones with
	// missing cells, the transposed-mode analogue of spec.md §4.5's
	// row-shape mismatch handling.
	for _, col := range cols {
		if col.Tape.Rows >= maxRows {
			continue
		}
		col.ensureRow(maxRows-1, 0, 0)
		for r := col.Tape.Rows; r < maxRows; r++ {
			col.setMissing()
			col.Tape.SetPosLen(r, tape.PackPosLen(true, false, false, 0, 0))
		}
		col.Tape.Rows = maxRows
		res.Warnings = appendWarning(res.Warnings, o, -1, -1, "transposed column shorter than the widest column; padded with missing")
	}

	for _, c := range cols {
		c.Tape.Truncate()
	}
	res.Rows = maxRows
	return res, nil
}

// transposedLineBounds finds one physical line's bounds, tolerating
// embedded newlines inside quoted fields exactly like
// internal/layout's row scanner (duplicated locally rather than
// imported, to keep the Layout Detector / Tape Builder boundary the
// spec draws between components).
func transposedLineBounds(buf []byte, pos, end int, openQuote, closeQuote byte) (lineStart, lineEnd, next int) {
	lineStart = pos
	i := pos
	quotes := 0
	for i < end {
		c := buf[i]
		if c == openQuote || c == closeQuote {
			quotes++
		}
		if c == '\n' && quotes%2 == 0 {
			lineEnd = i
			next = i + 1
			if lineEnd > lineStart && buf[lineEnd-1] == '\r' {
				lineEnd--
			}
			return
		}
		i++
	}
	lineEnd = end
	if lineEnd > lineStart && buf[lineEnd-1] == '\r' {
		lineEnd--
	}
	return lineStart, lineEnd, end
}
