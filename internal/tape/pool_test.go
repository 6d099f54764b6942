package tape

import "testing"

func TestPoolRefMapInsertDedup(t *testing.T) {
	p := NewPoolRefMap()
	a := p.Insert("US")
	b := p.Insert("CA")
	a2 := p.Insert("US")

	if a != a2 {
		t.Fatalf("re-inserting a seen key must return the same ref: %d vs %d", a, a2)
	}
	if a == b {
		t.Fatalf("distinct keys must get distinct refs")
	}
	if a == 0 || b == 0 {
		t.Fatalf("ref 0 is reserved for missing, got a=%d b=%d", a, b)
	}
}

func TestPoolRefMapLookup(t *testing.T) {
	p := NewPoolRefMap()
	p.Insert("US")

	if _, ok := p.Lookup("CA"); ok {
		t.Fatalf("Lookup of an unseen key must report ok=false")
	}
	ref, ok := p.Lookup("US")
	if !ok || ref != 1 {
		t.Fatalf("Lookup(US): got ref=%d ok=%v", ref, ok)
	}
}

func TestPoolRefMapFlatten(t *testing.T) {
	p := NewPoolRefMap()
	p.Insert("US")
	p.Insert("CA")
	p.Insert("MX")

	flat := p.Flatten()
	if len(flat) != 3 {
		t.Fatalf("Flatten length: got %d want 3", len(flat))
	}
	for _, key := range []string{"US", "CA", "MX"} {
		ref, _ := p.Lookup(key)
		if flat[ref-1] != key {
			t.Errorf("Flatten()[%d-1] = %q, want %q", ref, flat[ref-1], key)
		}
	}
}

func TestPoolRefMapInsertionOrderDeterminism(t *testing.T) {
	a := NewPoolRefMap()
	b := NewPoolRefMap()
	order := []string{"z", "a", "m", "a", "q"}
	for _, k := range order {
		a.Insert(k)
		b.Insert(k)
	}
	af, bf := a.Flatten(), b.KeysInInsertionOrder()
	if len(af) != len(bf) {
		t.Fatalf("length mismatch: %d vs %d", len(af), len(bf))
	}
	for i := range af {
		if af[i] != bf[i] {
			t.Errorf("index %d: %q vs %q", i, af[i], bf[i])
		}
	}
}
