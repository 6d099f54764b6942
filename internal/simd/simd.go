// Package simd counts delimiter-byte occurrences for the Layout
// Detector's candidate-delimiter prefilter (spec.md §4.2). Counting is
// backed by bytes.Count, which the runtime itself implements with
// AVX2/SSE assembly on amd64 and NEON on arm64 — HasAVX2 exposes amd64
// capability detection via golang.org/x/sys/cpu so callers can widen
// the prefilter's scan window on CPUs where that counting is fastest,
// without this package hand-rolling its own SIMD kernels.
package simd

import "bytes"

// ScanSeparators counts the occurrences of sep in data.
func ScanSeparators(data []byte, sep byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	return uint64(bytes.Count(data, []byte{sep}))
}
