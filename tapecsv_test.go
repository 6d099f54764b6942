package tapecsv

import (
	"bytes"
	"testing"
)

const sampleCSV = "id,code,amount,active\n1,US,10.5,true\n2,CA,20,false\n3,US,,true\n"

func TestParseFileBasic(t *testing.T) {
	f, err := ParseFile(FromBuffer([]byte(sampleCSV)))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer f.Close()

	if got, want := f.Names(), []string{"id", "code", "amount", "active"}; !equalStrings(got, want) {
		t.Fatalf("Names: got %v want %v", got, want)
	}
	if f.Rows() != 3 {
		t.Fatalf("Rows: got %d want 3", f.Rows())
	}

	amount := f.ColumnByName("amount")
	if amount == nil {
		t.Fatalf("missing amount column")
	}
	if v, ok := amount.Float64(0); !ok || v != 10.5 {
		t.Errorf("amount[0]: got %v,%v want 10.5,true", v, ok)
	}
	// Row 1 is an int-shaped value (20), but the column promotes to
	// float64 because row 0 had a fractional value.
	if v, ok := amount.Float64(1); !ok || v != 20 {
		t.Errorf("amount[1]: got %v,%v want 20,true", v, ok)
	}
	if amount.Type() != "float64" {
		t.Errorf("amount column type: got %q want float64", amount.Type())
	}
	if !amount.IsMissing(2) {
		t.Errorf("amount[2] is the empty string; expected missing")
	}

	active := f.ColumnByName("active")
	if v, ok := active.Bool(0); !ok || !v {
		t.Errorf("active[0]: got %v,%v want true,true", v, ok)
	}
	if v, ok := active.Bool(1); !ok || v {
		t.Errorf("active[1]: got %v,%v want false,true", v, ok)
	}
}

func TestParseFileRequestIDAutoGenerated(t *testing.T) {
	f, err := ParseFile(FromBuffer([]byte(sampleCSV)))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer f.Close()
	if f.RequestID() == "" {
		t.Errorf("expected an auto-generated RequestID")
	}
}

func TestParseFileExplicitRequestID(t *testing.T) {
	f, err := ParseFile(FromBuffer([]byte(sampleCSV)), WithRequestID("batch-42"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer f.Close()
	if f.RequestID() != "batch-42" {
		t.Errorf("RequestID: got %q want batch-42", f.RequestID())
	}
}

func TestParseFileNoHeader(t *testing.T) {
	data := "1,a\n2,b\n"
	f, err := ParseFile(FromBuffer([]byte(data)), WithNoHeader())
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer f.Close()
	if f.Rows() != 2 {
		t.Fatalf("Rows: got %d want 2", f.Rows())
	}
	if got, want := f.Names(), []string{"Column1", "Column2"}; !equalStrings(got, want) {
		t.Errorf("synthetic names: got %v want %v", got, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f, err := ParseFile(FromBuffer([]byte(sampleCSV)), WithRequestID("rt-1"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.SaveTo(&buf); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(&buf)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	defer loaded.Close()

	if loaded.Rows() != f.Rows() || loaded.RequestID() != f.RequestID() {
		t.Fatalf("round trip mismatch: rows %d vs %d, requestID %q vs %q",
			loaded.Rows(), f.Rows(), loaded.RequestID(), f.RequestID())
	}
	if !equalStrings(loaded.Names(), f.Names()) {
		t.Fatalf("round trip names mismatch: %v vs %v", loaded.Names(), f.Names())
	}

	wantAmount := f.ColumnByName("amount")
	gotAmount := loaded.ColumnByName("amount")
	for i := 0; i < f.Rows(); i++ {
		wv, wok := wantAmount.Float64(i)
		gv, gok := gotAmount.Float64(i)
		if wok != gok || wv != gv {
			t.Errorf("row %d amount mismatch after round trip: got %v,%v want %v,%v", i, gv, gok, wv, wok)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
