package tape

import "sort"

// PoolRefMap deduplicates the distinct strings seen in one column,
// mapping each distinct byte sequence to a dense 1-based ref. Ref 0 is
// reserved to mean "missing". Insertion assigns the next ref in order,
// so replaying inserts in the same order reproduces the same refs
// (required for the merge determinism guarantee in spec.md §4.7).
type PoolRefMap struct {
	refs map[string]uint32
	next uint32
}

// NewPoolRefMap creates an empty pool map.
func NewPoolRefMap() *PoolRefMap {
	return &PoolRefMap{refs: make(map[string]uint32), next: 1}
}

// Insert returns the ref for key, assigning a fresh one if key has not
// been seen before in this map. The canonical key for an escaped field
// is its un-escaped form, per spec.md §4.6.
func (p *PoolRefMap) Insert(key string) uint32 {
	if ref, ok := p.refs[key]; ok {
		return ref
	}
	ref := p.next
	p.refs[key] = ref
	p.next++
	return ref
}

// Lookup returns the ref for key without inserting, and whether it was
// present.
func (p *PoolRefMap) Lookup(key string) (uint32, bool) {
	ref, ok := p.refs[key]
	return ref, ok
}

// Len returns the number of distinct strings recorded so far.
func (p *PoolRefMap) Len() int { return len(p.refs) }

// Flatten sorts the map's (key, ref) pairs by ref and returns the keys
// in ref order, so that result[ref-1] == key. The map itself is not
// mutated; callers discard it after flattening per spec.md §3.
func (p *PoolRefMap) Flatten() []string {
	type pair struct {
		key string
		ref uint32
	}
	pairs := make([]pair, 0, len(p.refs))
	for k, r := range p.refs {
		pairs = append(pairs, pair{k, r})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ref < pairs[j].ref })
	out := make([]string, len(pairs))
	for _, pr := range pairs {
		out[pr.ref-1] = pr.key
	}
	return out
}

// KeysInInsertionOrder returns the map's keys in ref order. Used by
// the merge step to walk a
// non-base thread's map "in insertion order": since refs are assigned
// in insertion order, sorting by ref reconstructs it.
func (p *PoolRefMap) KeysInInsertionOrder() []string {
	return p.Flatten()
}
