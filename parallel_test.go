package tapecsv

import (
	"fmt"
	"strings"
	"testing"
)

func TestParallelMatchesSerial(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,code,amount\n")
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&b, "%d,US-%d,%d.5\n", i, i%50, i)
	}
	data := []byte(b.String())

	serial, err := ParseFile(FromBuffer(data), WithThreaded(ThreadNever))
	if err != nil {
		t.Fatalf("serial ParseFile: %v", err)
	}
	defer serial.Close()

	parallel, err := ParseFile(FromBuffer(data), WithThreaded(ThreadAlways), WithWorkers(4))
	if err != nil {
		t.Fatalf("parallel ParseFile: %v", err)
	}
	defer parallel.Close()

	if serial.Rows() != parallel.Rows() {
		t.Fatalf("row count mismatch: serial=%d parallel=%d", serial.Rows(), parallel.Rows())
	}
	if !equalStrings(serial.Types(), parallel.Types()) {
		t.Fatalf("type mismatch: serial=%v parallel=%v", serial.Types(), parallel.Types())
	}

	for _, name := range serial.Names() {
		sc, pc := serial.ColumnByName(name), parallel.ColumnByName(name)
		for i := 0; i < serial.Rows(); i++ {
			sv, pv := sc.Get(i), pc.Get(i)
			if sv != pv {
				t.Fatalf("column %q row %d mismatch: serial=%v parallel=%v", name, i, sv, pv)
			}
		}
	}
}

// TestParallelPoolMerge covers spec.md §8 scenario 6: a pooled column
// split across 4 worker chunks must merge into one pool holding exactly
// the distinct values seen, with every row recoded to point at the
// right merged ref. The code column cycles through 5 values on a
// period that does not align with chunk boundaries, so each worker
// chunk's first-occurrence order differs from the others.
func TestParallelPoolMerge(t *testing.T) {
	codes := []string{"US", "CA", "MX", "UK", "FR"}

	var b strings.Builder
	b.WriteString("id,code\n")
	const rows = 100000
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%s\n", i, codes[i%len(codes)])
	}
	data := []byte(b.String())

	serial, err := ParseFile(FromBuffer(data), WithPool(true), WithThreaded(ThreadNever))
	if err != nil {
		t.Fatalf("serial ParseFile: %v", err)
	}
	defer serial.Close()

	parallel, err := ParseFile(FromBuffer(data), WithPool(true), WithThreaded(ThreadAlways), WithWorkers(4))
	if err != nil {
		t.Fatalf("parallel ParseFile: %v", err)
	}
	defer parallel.Close()

	if serial.Rows() != parallel.Rows() {
		t.Fatalf("row count mismatch: serial=%d parallel=%d", serial.Rows(), parallel.Rows())
	}

	sc, pc := serial.ColumnByName("code"), parallel.ColumnByName("code")
	if len(pc.refs) != len(codes) {
		t.Fatalf("parallel refs = %v, want %d distinct values", pc.refs, len(codes))
	}
	if len(sc.refs) != len(codes) {
		t.Fatalf("serial refs = %v, want %d distinct values", sc.refs, len(codes))
	}

	for i := 0; i < serial.Rows(); i++ {
		sv, sok := sc.String(i)
		pv, pok := pc.String(i)
		if !sok || !pok {
			t.Fatalf("row %d: missing value (serial ok=%v, parallel ok=%v)", i, sok, pok)
		}
		if sv != pv {
			t.Fatalf("row %d mismatch: serial=%q parallel=%q", i, sv, pv)
		}
		if pv != codes[i%len(codes)] {
			t.Fatalf("row %d = %q, want %q", i, pv, codes[i%len(codes)])
		}
	}
}
