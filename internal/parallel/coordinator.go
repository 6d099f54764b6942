// Package parallel implements the Parallel Coordinator (spec.md §4.7):
// splitting a byte range into quote-safe chunks, fanning out one
// single-threaded parse.Run per chunk, and merging the per-chunk
// results back into one column set. The chunking technique is
// grounded on the teacher's Scanner.Scan/findSafeRecordBoundary
// (csvquery internal/indexer/scanner.go): precompute every boundary up
// front so workers never gap or overlap, then join with a
// sync.WaitGroup.
package parallel

import (
	"runtime"
	"sync"

	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/parse"
	"github.com/tapecsv/tapecsv/internal/tape"
)

const minCellsPerThread = 5000

// ShouldRun implements the spec.md §4.7 gating conditions for whether
// the coordinator runs at all, versus falling back to a single-threaded
// parse.Run call.
func ShouldRun(o *options.Options, estimatedRows, numCols int) bool {
	if o.Transpose {
		return false
	}
	if o.Threaded == options.ThreadNever {
		return false
	}
	if o.Limit > 0 {
		return false
	}
	workers := Workers(o)
	if workers <= 1 {
		return false
	}
	if estimatedRows <= workers {
		return false
	}
	if o.Threaded != options.ThreadAlways && estimatedRows*numCols < minCellsPerThread {
		return false
	}
	return true
}

// Workers resolves the configured or runtime-derived worker count.
func Workers(o *options.Options) int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// chunkBoundary finds the next byte at or after hint that safely
// starts a new row: same technique as the teacher's
// findSafeRecordBoundary, generalized to the configured open/close
// quote bytes instead of a hardcoded '"'.
func chunkBoundary(buf []byte, hint, end int, openQuote, closeQuote byte) int {
	pos := hint
	if pos >= end {
		return end
	}
	nl := indexByte(buf, pos, end, '\n')
	if nl == -1 {
		return end
	}
	currentNL := nl
	for {
		if currentNL+1 >= end {
			return end
		}
		nextNL := indexByte(buf, currentNL+1, end, '\n')
		if nextNL == -1 {
			return end
		}
		quotes := 0
		for i := currentNL + 1; i < nextNL; i++ {
			if buf[i] == openQuote || buf[i] == closeQuote {
				quotes++
			}
		}
		if quotes%2 == 0 {
			return currentNL + 1
		}
		currentNL = nextNL
	}
}

func indexByte(buf []byte, from, to int, b byte) int {
	for i := from; i < to; i++ {
		if buf[i] == b {
			return i
		}
	}
	return -1
}

// Run splits [start, end) into N quote-safe chunks, parses each in its
// own goroutine with a shared atomically-promoted TypeCode vector, and
// serially merges the results (spec.md §4.7 steps 1-4).
func Run(buf []byte, start, end int, colNames []string, o *options.Options, fp field.Parser, rowEstimate int, pins []tape.TypeCode) (*parse.Result, error) {
	n := Workers(o)
	boundaries := make([]int, n+1)
	boundaries[0] = start
	boundaries[n] = end
	chunkSize := (end - start) / n
	for i := 1; i < n; i++ {
		hint := start + i*chunkSize
		if hint < end {
			boundaries[i] = chunkBoundary(buf, hint, end, o.OpenQuote, o.CloseQuote)
		} else {
			boundaries[i] = end
		}
	}

	// One shared column set provides the atomically-promoted TypeCode
	// cells every worker's local columns reference (spec.md §4.7 step
	// 3: "the TypeCode vector is shared across threads").
	shared := make([]*parse.Column, len(colNames))
	for i, name := range colNames {
		var pin tape.TypeCode
		if i < len(pins) {
			pin = pins[i]
		}
		shared[i] = parse.NewColumn(name, 0, pin)
	}

	results := make([]*parse.Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup

	perWorkerEstimate := rowEstimate/n + 1
	for i := 0; i < n; i++ {
		cs, ce := boundaries[i], boundaries[i+1]
		if cs >= ce {
			continue
		}
		wg.Add(1)
		go func(idx, chunkStart, chunkEnd int) {
			defer wg.Done()
			localPins := make([]tape.TypeCode, len(colNames))
			for c := range localPins {
				if c < len(pins) {
					localPins[c] = pins[c]
				}
			}
			res, err := parse.RunShared(buf, chunkStart, chunkEnd, colNames, o, fp, perWorkerEstimate, localPins, shared)
			results[idx] = res
			errs[idx] = err
		}(i, cs, ce)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return merge(colNames, results)
}
