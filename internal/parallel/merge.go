package parallel

import (
	"sync"

	"github.com/tapecsv/tapecsv/internal/parse"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// merge implements spec.md §4.7 step 4: concatenate rows in thread
// order; for each pooled column, thread 0's pool is the base, later
// threads' new keys get fresh refs recorded in a per-thread re-coding
// vector, then (in parallel) each thread's pooled value slots are
// rewritten through that vector and copied into the master tape.
//
// Determinism follows from processing threads in index order and,
// within a thread, keys in insertion (ref) order.
func merge(colNames []string, results []*parse.Result) (*parse.Result, error) {
	chunks := make([]*parse.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			chunks = append(chunks, r)
		}
	}
	if len(chunks) == 0 {
		return &parse.Result{Columns: emptyColumns(colNames)}, nil
	}

	totalRows := 0
	for _, c := range chunks {
		totalRows += c.Rows
	}

	ncols := len(colNames)
	merged := make([]*parse.Column, ncols)
	recode := make([][][]uint32, ncols) // recode[col][chunk] = oldRef-1 -> newRef

	var wg sync.WaitGroup
	for ci := 0; ci < ncols; ci++ {
		base := chunks[0].Columns[ci]
		mergedPool := tape.NewPoolRefMap()
		for _, k := range base.Pool.KeysInInsertionOrder() {
			mergedPool.Insert(k)
		}
		recode[ci] = make([][]uint32, len(chunks))

		for ti := 1; ti < len(chunks); ti++ {
			thread := chunks[ti].Columns[ci]
			keys := thread.Pool.KeysInInsertionOrder()
			vec := make([]uint32, len(keys)+1) // index 0 unused (ref 0 = missing, stays 0)
			for _, k := range keys {
				oldRef, _ := thread.Pool.Lookup(k)
				newRef := mergedPool.Insert(k)
				vec[oldRef] = newRef
			}
			recode[ci][ti] = vec
		}

		wg.Add(1)
		go func(ci int) {
			defer wg.Done()
			mergeColumn(ci, chunks, recode[ci], merged, mergedPool, totalRows)
		}(ci)
	}
	wg.Wait()

	var warnings []parse.Warning
	for _, c := range chunks {
		warnings = append(warnings, c.Warnings...)
	}

	return &parse.Result{Columns: merged, Rows: totalRows, Warnings: warnings}, nil
}

// mergeColumn rewrites and concatenates one column's tape across all
// chunks into its final, merged form, and installs the merged pool.
func mergeColumn(ci int, chunks []*parse.Result, recode [][]uint32, merged []*parse.Column, mergedPool *tape.PoolRefMap, totalRows int) {
	finalType := chunks[0].Columns[ci].Type()
	for _, c := range chunks[1:] {
		finalType = tape.MonotonicMax(finalType, c.Columns[ci].Type())
	}

	out := tape.NewTape(totalRows)
	row := 0
	isPool := finalType.Base() == tape.Pool
	for ti, c := range chunks {
		src := c.Columns[ci]
		for r := 0; r < src.Tape.Rows; r++ {
			pl := src.Tape.RawPosLenAt(r)
			val := src.Tape.ValueAt(r)
			if isPool && ti > 0 && !tape.UnpackPosLen(pl).Missing {
				oldRef := tape.UnpackRef(val)
				if vec := recode[ti]; vec != nil && int(oldRef) < len(vec) && vec[oldRef] != 0 {
					val = tape.PackRef(vec[oldRef])
				}
			}
			out.SetPosLen(row, pl)
			out.SetValue(row, val)
			row++
		}
	}
	out.Rows = row
	merged[ci] = &parse.Column{
		Name: chunks[0].Columns[ci].Name,
		Tape: out,
		Pool: mergedPool,
	}
	merged[ci].SetType(finalType)
}

func emptyColumns(colNames []string) []*parse.Column {
	cols := make([]*parse.Column, len(colNames))
	for i, n := range colNames {
		cols[i] = parse.NewColumn(n, 0, 0)
	}
	return cols
}
