package layout

import (
	"strings"

	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/simd"
)

// delimScanWindow bounds the raw byte range simd.ScanSeparators checks
// when pruning candidates, independent of sampleWindowRows (a row count)
// since a pathological file could have very long rows. Widened on CPUs
// with AVX2 (what bytes.Count's amd64 assembly kernel uses), since the
// prefilter scan is cheap enough there to look further; other CPUs use
// the base 64KB window. The size is chosen once, at package init.
var delimScanWindow = baseDelimScanWindow()

func baseDelimScanWindow() int {
	if simd.HasAVX2() {
		return 256 * 1024
	}
	return 64 * 1024
}

const sampleWindowRows = 10

// inferDelimiter implements spec.md §4.2 delimiter auto-detection:
// extension fast paths for .tsv/.wsv, otherwise tokenize the first
// window of rows with each candidate and pick the one whose per-row
// field count is most consistent.
//
// Tie-break (spec.md §9 Open Question, resolved here): the candidate
// with the highest mode frequency wins; ties break by higher field
// count, then by position in candidateDelims.
func inferDelimiter(buf []byte, pos, end int, o *options.Options, pathHint string) string {
	switch {
	case strings.HasSuffix(pathHint, ".tsv"):
		return "\t"
	case strings.HasSuffix(pathHint, ".wsv"):
		return " "
	}

	rows := sampleRows(buf, pos, end, o, sampleWindowRows)
	if len(rows) == 0 {
		return ","
	}

	scanEnd := pos + delimScanWindow
	if scanEnd > end {
		scanEnd = end
	}
	window := buf[pos:scanEnd]

	type score struct {
		modeFreq, fieldCount int
	}
	best := -1
	var bestScore score

	for ci, d := range candidateDelims {
		if d == '\r' || d == '\n' || d == 0 {
			continue
		}
		// Quote-unaware prefilter: a candidate absent from the raw
		// window can't win, so skip the quote-aware per-row scoring
		// below for it. SIMD-accelerated on amd64.
		if simd.ScanSeparators(window, d) == 0 {
			continue
		}
		counts := map[int]int{}
		for _, row := range rows {
			n := countFieldsQuick(row, d, o)
			counts[n]++
		}
		modeFreq, modeField := 0, 0
		for field, freq := range counts {
			if freq > modeFreq || (freq == modeFreq && field > modeField) {
				modeFreq, modeField = freq, field
			}
		}
		s := score{modeFreq, modeField}
		if best == -1 || s.modeFreq > bestScore.modeFreq ||
			(s.modeFreq == bestScore.modeFreq && s.fieldCount > bestScore.fieldCount) {
			best = ci
			bestScore = s
		}
	}
	if best == -1 {
		return ","
	}
	return string(candidateDelims[best])
}

func sampleRows(buf []byte, pos, end int, o *options.Options, max int) [][]byte {
	var rows [][]byte
	cur := pos
	for len(rows) < max && cur < end {
		cur = skipNonDataRows(buf, cur, end, o)
		if cur >= end {
			break
		}
		ls, le, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		rows = append(rows, buf[ls:le])
		cur = next
	}
	return rows
}

// countFieldsQuick counts fields in a single row for a candidate
// delimiter, respecting quoting, without invoking the full Field
// Parser (used only for scoring candidates, not for final tokenizing).
func countFieldsQuick(row []byte, delim byte, o *options.Options) int {
	if len(row) == 0 {
		return 0
	}
	count := 1
	inQuote := false
	for i := 0; i < len(row); i++ {
		c := row[i]
		if c == o.OpenQuote || c == o.CloseQuote {
			inQuote = !inQuote
			continue
		}
		if c == delim && !inQuote {
			count++
		}
	}
	return count
}
