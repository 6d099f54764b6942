// Package layout implements the Layout Detector (spec.md §4.2):
// header/data-start resolution, delimiter auto-detection, row-count
// estimation, and column-name generation.
package layout

import (
	"strconv"
	"strings"

	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
)

// Result is everything the rest of the pipeline needs from the
// Layout Detector.
type Result struct {
	Delim         string
	DataStart     int // absolute byte offset into the buffer
	ColumnNames   []string
	EstimatedRows int
}

// candidateDelims is the fixed auto-detection candidate set, in
// priority order for the tie-break rule (spec.md §4.2 and the Open
// Question in spec.md §9, resolved here: ties break by higher field
// count, then by this list's order).
var candidateDelims = []byte{',', '\t', ' ', '|', ';'}

// reservedDelims may never be selected or accepted as an explicit
// delimiter.
func isReservedDelim(d string) bool {
	for _, b := range []byte(d) {
		if b == '\r' || b == '\n' || b == 0 {
			return true
		}
	}
	return false
}

// Detect runs the full Layout Detector over [start, start+length) of
// buf. pathHint is the source's file extension hint ("" if unknown),
// used for the .tsv/.wsv fast paths.
func Detect(buf []byte, start, length int, o *options.Options, fp field.Parser, pathHint string) (Result, error) {
	end := start + length
	if end > len(buf) {
		end = len(buf)
	}

	headerRow, dataStart, names, err := resolveHeaderAndDataStart(buf, start, end, o)
	if err != nil {
		return Result{}, err
	}
	_ = headerRow

	delim := o.Delim
	if delim == "" {
		delim = inferDelimiter(buf, dataStart, end, o, pathHint)
	}
	if isReservedDelim(delim) {
		delim = ","
	}

	// Column names: explicit names take precedence; a header range
	// (spec.md §4.2/§6 "range of rows to concatenate") merges each
	// row's fields positionally; a single header row is parsed
	// directly; otherwise names are synthesized.
	var colNames []string
	switch {
	case len(o.Header.Explicit) > 0:
		colNames = append([]string(nil), o.Header.Explicit...)
	case names != nil && o.Header.RangeEnd > o.Header.RowNumber:
		tmpOpts := *o
		tmpOpts.Delim = delim
		colNames = mergeHeaderRange(buf, names.start, end, o, &tmpOpts, fp)
	case names != nil:
		tmpOpts := *o
		tmpOpts.Delim = delim
		colNames = parseHeaderFields(buf, names.start, names.end, &tmpOpts, fp)
	default:
		n := countColumns(buf, dataStart, end, o, delim)
		colNames = syntheticNames(n)
	}

	if o.NormalizeNames {
		colNames = NormalizeNames(colNames)
	} else {
		colNames = dedupe(colNames)
	}

	est := estimateRows(buf, dataStart, end, o, delim)

	return Result{Delim: delim, DataStart: dataStart, ColumnNames: colNames, EstimatedRows: est}, nil
}

type headerRowBounds struct{ start, end int }

// resolveHeaderAndDataStart implements spec.md §4.2 "Header / data-start
// resolution".
func resolveHeaderAndDataStart(buf []byte, start, end int, o *options.Options) (headerRow int, dataStart int, hdr *headerRowBounds, err error) {
	if len(o.Header.Explicit) > 0 {
		ds := start
		if o.DataRow > 0 {
			ds, err = advanceRows(buf, start, end, o.DataRow-1, o)
			if err != nil {
				return 0, 0, nil, err
			}
		}
		return 0, skipNonDataRows(buf, ds, end, o), nil, nil
	}

	if o.Header.Disabled || o.Header.RowNumber == 0 {
		ds := start
		if o.DataRow > 0 {
			ds, err = advanceRows(buf, start, end, o.DataRow-1, o)
			if err != nil {
				return 0, 0, nil, err
			}
		}
		return 0, skipNonDataRows(buf, ds, end, o), nil, nil
	}

	// Advance row-by-row (respecting quotes/comments/empty-lines) to
	// the h-th row.
	target := o.Header.RowNumber
	if o.Header.RangeEnd > target {
		target = o.Header.RangeEnd
	}
	rowStart, rowAfter, err := locateRow(buf, start, end, target, o)
	if err != nil {
		return 0, 0, nil, err
	}

	hs := rowStart
	if o.Header.RangeEnd > o.Header.RowNumber {
		hs, _, err = locateRowStartOnly(buf, start, end, o.Header.RowNumber, o)
		if err != nil {
			return 0, 0, nil, err
		}
	}

	dataStart = rowAfter
	if o.DataRow > 0 {
		dataStart, err = advanceRows(buf, rowAfter, end, o.DataRow-o.Header.RowNumber-1, o)
		if err != nil {
			return 0, 0, nil, err
		}
	}
	dataStart = skipNonDataRows(buf, dataStart, end, o)

	return o.Header.RowNumber, dataStart, &headerRowBounds{hs, rowAfterContentEnd(buf, hs, end, o)}, nil
}

// mergeHeaderRange walks the rows [RowNumber, RangeEnd] starting at
// rangeStart (the first row's own start, already located by
// resolveHeaderAndDataStart) and joins same-index fields across rows
// with "_", producing one name per column. A row shorter than another
// simply contributes nothing at the missing indices.
func mergeHeaderRange(buf []byte, rangeStart, end int, o *options.Options, tmpOpts *options.Options, fp field.Parser) []string {
	rowCount := o.Header.RangeEnd - o.Header.RowNumber + 1
	rowsFields := make([][]string, 0, rowCount)

	cur := rangeStart
	for i := 0; i < rowCount && cur < end; i++ {
		cur = skipNonDataRows(buf, cur, end, o)
		if cur >= end {
			break
		}
		ls, le, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		rowsFields = append(rowsFields, parseHeaderFields(buf, ls, le, tmpOpts, fp))
		cur = next
	}

	maxCols := 0
	for _, rf := range rowsFields {
		if len(rf) > maxCols {
			maxCols = len(rf)
		}
	}
	if maxCols == 0 {
		return nil
	}

	merged := make([]string, maxCols)
	for c := 0; c < maxCols; c++ {
		var parts []string
		for _, rf := range rowsFields {
			if c < len(rf) && rf[c] != "" {
				parts = append(parts, rf[c])
			}
		}
		merged[c] = strings.Join(parts, "_")
	}
	return merged
}

func rowAfterContentEnd(buf []byte, pos, end int, o *options.Options) int {
	_, lineEnd, _ := nextRow(buf, pos, end, o.OpenQuote, o.CloseQuote)
	return lineEnd
}

// locateRow advances exactly n (1-based target) non-skipped rows from
// pos, returning the bounds of that row.
func locateRow(buf []byte, pos, end, target int, o *options.Options) (rowStart, rowAfter int, err error) {
	cur := pos
	count := 0
	for count < target {
		cur = skipNonDataRows(buf, cur, end, o)
		if cur >= end {
			return cur, cur, nil
		}
		ls, le, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		count++
		if count == target {
			return ls, next, nil
		}
		_ = le
		cur = next
	}
	return cur, cur, nil
}

func locateRowStartOnly(buf []byte, pos, end, target int, o *options.Options) (int, int, error) {
	return locateRow(buf, pos, end, target, o)
}

// advanceRows skips exactly n rows (not respecting comment/empty-line
// skipping, used for an explicit datarow/skipto override) and returns
// the position right after.
func advanceRows(buf []byte, pos, end, n int, o *options.Options) (int, error) {
	cur := pos
	for i := 0; i < n && cur < end; i++ {
		_, _, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		cur = next
	}
	return cur, nil
}

// skipNonDataRows advances past comment-prefixed and (if configured)
// empty lines, returning the position of the first real data row.
func skipNonDataRows(buf []byte, pos, end int, o *options.Options) int {
	cur := pos
	for cur < end {
		ls, le, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		line := buf[ls:le]
		if isCommentLine(line, o.Comment) {
			cur = next
			continue
		}
		if o.IgnoreEmptyLines && isEmptyLine(line) {
			cur = next
			continue
		}
		return cur
	}
	return cur
}

// parseHeaderFields tokenizes the header row bytes into field strings
// using the resolved delimiter and the Field Parser contract.
func parseHeaderFields(buf []byte, pos, end int, o *options.Options, fp field.Parser) []string {
	var names []string
	i := pos
	for i < end {
		res, err := fp.Parse(field.TypeString, buf, i, end-i, o)
		if err != nil {
			break
		}
		names = append(names, res.Str)
		if res.Consumed <= 0 {
			break
		}
		i += res.Consumed
		if res.Status.Has(field.StatusNewlineTerminator) || res.Status.Has(field.StatusEOFTerminator) {
			break
		}
	}
	return names
}

func countColumns(buf []byte, pos, end int, o *options.Options, delim string) int {
	tmp := *o
	tmp.Delim = delim
	fp := field.NewDefault()
	_, le, _ := nextRow(buf, pos, end, o.OpenQuote, o.CloseQuote)
	return len(parseHeaderFields(buf, pos, le, &tmp, fp))
}

func syntheticNames(n int) []string {
	if n <= 0 {
		n = 1
	}
	names := make([]string, n)
	for i := range names {
		names[i] = columnLabel(i + 1)
	}
	return names
}

func columnLabel(n int) string {
	return "Column" + strconv.Itoa(n)
}
