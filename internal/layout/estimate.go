package layout

import "github.com/tapecsv/tapecsv/internal/options"

const estimateSamplePrefixBytes = 64 * 1024

// estimateRows implements spec.md §4.2 "Row-count estimate": scan a
// sample prefix, count rows, and linearly extrapolate against total
// bytes. The result is only a hint; the Tape Builder grows on
// under-estimates.
func estimateRows(buf []byte, pos, end int, o *options.Options, delim string) int {
	total := end - pos
	if total <= 0 {
		return 0
	}
	sampleEnd := pos + estimateSamplePrefixBytes
	if sampleEnd > end {
		sampleEnd = end
	}

	rows := 0
	bytesSeen := 0
	cur := pos
	for cur < sampleEnd {
		cur = skipNonDataRows(buf, cur, end, o)
		if cur >= sampleEnd {
			break
		}
		_, _, next := nextRow(buf, cur, end, o.OpenQuote, o.CloseQuote)
		rows++
		bytesSeen += next - cur
		cur = next
	}

	if rows == 0 || bytesSeen == 0 {
		return 1
	}
	avgBytesPerRow := float64(bytesSeen) / float64(rows)
	estimate := int(float64(total) / avgBytesPerRow)
	if estimate < rows {
		estimate = rows
	}
	return estimate
}
