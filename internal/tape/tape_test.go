package tape

import "testing"

func TestPackUnpackPosLen(t *testing.T) {
	tests := []struct {
		name                         string
		missing, wasInt, escape     bool
		offset, length              uint64
	}{
		{"plain", false, false, false, 0, 0},
		{"missing", true, false, false, 123, 4},
		{"was-int", false, true, false, MaxOffset, MaxFieldLength},
		{"escaped", false, false, true, 1 << 20, 1 << 10},
		{"all flags", true, true, true, MaxOffset, MaxFieldLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := PackPosLen(tt.missing, tt.wasInt, tt.escape, tt.offset, tt.length)
			got := UnpackPosLen(v)
			if got.Missing != tt.missing || got.WasInt != tt.wasInt || got.Escape != tt.escape {
				t.Fatalf("flags: got %+v", got)
			}
			if got.Offset != tt.offset {
				t.Errorf("offset: got %d want %d", got.Offset, tt.offset)
			}
			if got.Length != tt.length {
				t.Errorf("length: got %d want %d", got.Length, tt.length)
			}
		})
	}
}

func TestPackUnpackValues(t *testing.T) {
	if got := UnpackInt64(PackInt64(-42)); got != -42 {
		t.Errorf("int64 round trip: got %d", got)
	}
	if got := UnpackFloat64(PackFloat64(3.25)); got != 3.25 {
		t.Errorf("float64 round trip: got %v", got)
	}
	if got := UnpackBool(PackBool(true)); !got {
		t.Errorf("bool round trip: got false")
	}
	if got := UnpackRef(PackRef(7)); got != 7 {
		t.Errorf("ref round trip: got %d", got)
	}
	if got := UnpackDate(PackDate(19000)); got != 19000 {
		t.Errorf("date round trip: got %d", got)
	}
}

func TestUnpackFloat64FromPossiblyInt(t *testing.T) {
	intSlot := PackInt64(9)
	pl := PosLen{WasInt: true}
	if got := UnpackFloat64FromPossiblyInt(pl, intSlot); got != 9 {
		t.Errorf("from int: got %v want 9", got)
	}

	floatSlot := PackFloat64(2.5)
	pl2 := PosLen{WasInt: false}
	if got := UnpackFloat64FromPossiblyInt(pl2, floatSlot); got != 2.5 {
		t.Errorf("from float: got %v want 2.5", got)
	}
}

func TestTapeGrowAndEnsureRow(t *testing.T) {
	tp := NewTape(2)
	if tp.Capacity() != 2 {
		t.Fatalf("capacity: got %d want 2", tp.Capacity())
	}

	tp.SetPosLen(0, PackPosLen(false, false, false, 10, 5))
	tp.SetValue(0, PackInt64(100))

	tp.EnsureRow(10, 1000, 50)
	if tp.Capacity() <= 10 {
		t.Fatalf("expected growth past row 10, capacity=%d", tp.Capacity())
	}

	// Growth must not disturb already-written rows.
	pl := tp.PosLenAt(0)
	if pl.Offset != 10 || pl.Length != 5 {
		t.Errorf("row 0 poslen corrupted after growth: %+v", pl)
	}
	if UnpackInt64(tp.ValueAt(0)) != 100 {
		t.Errorf("row 0 value corrupted after growth")
	}
}

func TestTapeRowsTracking(t *testing.T) {
	tp := NewTape(5)
	tp.SetPosLen(3, PackPosLen(false, false, false, 0, 0))
	if tp.Rows != 4 {
		t.Errorf("Rows: got %d want 4", tp.Rows)
	}
	tp.SetPosLen(1, PackPosLen(false, false, false, 0, 0))
	if tp.Rows != 4 {
		t.Errorf("Rows must not shrink: got %d want 4", tp.Rows)
	}
}

func TestTapeTruncate(t *testing.T) {
	tp := NewTape(10)
	tp.SetPosLen(2, 0)
	tp.Truncate()
	if tp.Capacity() != 3 {
		t.Errorf("Truncate: got capacity %d want 3", tp.Capacity())
	}
}

func TestTapeRecodeValues(t *testing.T) {
	tp := NewTape(3)
	tp.SetValue(0, PackRef(1))
	tp.SetValue(1, PackRef(2))
	tp.SetValue(2, PackRef(1))

	remap := map[uint64]uint64{1: 10, 2: 20}
	tp.RecodeValues(func(old uint64) uint64 { return remap[old] })

	if UnpackRef(tp.ValueAt(0)) != 10 || UnpackRef(tp.ValueAt(1)) != 20 || UnpackRef(tp.ValueAt(2)) != 10 {
		t.Errorf("RecodeValues did not remap correctly: %v %v %v", tp.ValueAt(0), tp.ValueAt(1), tp.ValueAt(2))
	}
}
