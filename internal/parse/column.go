// Package parse implements Type Inference & Promotion (spec.md §4.4),
// the Tape Builder (spec.md §4.5), and String Pool integration
// (spec.md §4.6): the per-cell state machine that turns field-parser
// results into packed tape slots, plus the single-threaded driver that
// walks a byte range row by row. The Parallel Coordinator (internal/parallel)
// runs N of these drivers over disjoint byte ranges and merges their
// output.
package parse

import (
	"sync/atomic"

	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// Column holds one column's accumulated parse state: its tape, its
// (thread-local during parallel parsing) string pool, and a shared
// atomic TypeCode cell so concurrent threads can promote without
// clobbering one another (spec.md §4.7, §9 "atomically mutated
// TypeCode vector").
type Column struct {
	Name  string
	Tape  *tape.Tape
	Pool  *tape.PoolRefMap
	typ   *uint32 // shared across threads; always holds a tape.TypeCode
	user  bool
	count int // rows committed so far in this column
}

// NewColumn allocates a column with the given initial capacity. If
// pin is non-zero, the column starts USER-pinned at that type and
// inference never runs for it.
func NewColumn(name string, capacity int, pin tape.TypeCode) *Column {
	var shared uint32
	initial := tape.Empty
	if pin != 0 {
		initial = pin.WithUser()
	}
	shared = uint32(initial)
	return &Column{
		Name: name,
		Tape: tape.NewTape(capacity),
		Pool: tape.NewPoolRefMap(),
		typ:  &shared,
		user: pin != 0,
	}
}

// SharedType exposes the atomic cell backing this column's TypeCode,
// for wiring multiple threads onto the same shared vector entry
// (spec.md §4.7 step 3).
func (c *Column) SharedType() *uint32 { return c.typ }

// newColumnWithSharedType builds a worker-local column (its own tape
// and pool) whose TypeCode lives in an already-initialized shared
// atomic cell, so promotions made by one worker are visible to every
// other worker's columns for the same logical column (spec.md §4.7
// step 3, §5 "the column-type vector is shared and mutated
// atomically").
func newColumnWithSharedType(name string, capacity int, shared *uint32) *Column {
	return &Column{
		Name: name,
		Tape: tape.NewTape(capacity),
		Pool: tape.NewPoolRefMap(),
		typ:  shared,
	}
}

// Type loads the column's current TypeCode.
func (c *Column) Type() tape.TypeCode { return tape.TypeCode(atomic.LoadUint32(c.typ)) }

// SetType installs a fresh (non-shared) atomic cell holding t. Used by
// the Parallel Coordinator's merge step to finalize a merged column's
// type after all worker chunks have been folded together.
func (c *Column) SetType(t tape.TypeCode) {
	v := uint32(t)
	c.typ = &v
}

// promote moves the column's shared TypeCode to the monotonic max of
// its current value and next (a plain max-store is safe: promotions
// only ever move up the lattice, spec.md §9).
func (c *Column) promote(next tape.TypeCode) tape.TypeCode {
	for {
		cur := tape.TypeCode(atomic.LoadUint32(c.typ))
		merged := tape.MonotonicMax(cur, next)
		if merged == cur {
			return cur
		}
		if atomic.CompareAndSwapUint32(c.typ, uint32(cur), uint32(merged)) {
			return merged
		}
	}
}

// setMissing ORs the Missing flag onto the shared TypeCode.
func (c *Column) setMissing() {
	for {
		cur := tape.TypeCode(atomic.LoadUint32(c.typ))
		if cur.HasMissing() {
			return
		}
		next := cur.WithMissing()
		if atomic.CompareAndSwapUint32(c.typ, uint32(cur), uint32(next)) {
			return
		}
	}
}

// ensureRow grows the tape to accommodate row index i, following the
// reallocation formula in spec.md §4.5.
func (c *Column) ensureRow(i int, bytesRemaining, avgBytesPerRow int64) {
	c.Tape.EnsureRow(i, bytesRemaining, avgBytesPerRow)
}

// poolFraction reports the column's current pool cardinality as a
// fraction of the estimated row count, used for the POOL→STRING
// promotion check in spec.md §4.6.
func poolFraction(p *tape.PoolRefMap, rowEstimate int) float64 {
	if rowEstimate <= 0 {
		return 0
	}
	return float64(p.Len()) / float64(rowEstimate)
}

// shouldPromotePoolToString reports whether a POOL column's
// cardinality has exceeded pool_threshold × row_estimate.
func shouldPromotePoolToString(o *options.Options, p *tape.PoolRefMap, rowEstimate int) bool {
	if o.PoolThreshold <= 0 {
		return false
	}
	return poolFraction(p, rowEstimate) > o.PoolThreshold
}
