package options

import "testing"

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	if err := Validate(&o); err != nil {
		t.Fatalf("Default() must validate cleanly: %v", err)
	}
}

func TestNewAppliesOptions(t *testing.T) {
	o, err := New(WithDelim(";"), WithWorkers(4), WithStrict())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if o.Delim != ";" || o.Workers != 4 || !o.Strict {
		t.Errorf("options not applied: %+v", o)
	}
}

func TestValidateRejectsReservedDelimiter(t *testing.T) {
	for _, d := range []string{"\n", "\r", "\x00"} {
		o := Default()
		o.Delim = d
		if err := Validate(&o); err == nil {
			t.Errorf("delim %q: expected error, got nil", d)
		}
	}
}

func TestValidateRejectsDataRowBeforeHeader(t *testing.T) {
	o := Default()
	o.Header.RowNumber = 5
	o.DataRow = 3
	if err := Validate(&o); err == nil {
		t.Fatalf("expected error when data row precedes header row")
	}
}

func TestValidateRejectsInvertedHeaderRange(t *testing.T) {
	o := Default()
	o.Header.RowNumber = 3
	o.Header.RangeEnd = 1
	if err := Validate(&o); err == nil {
		t.Fatalf("expected error when header range end precedes start")
	}
}

func TestIsSentinelWholeFieldOnly(t *testing.T) {
	o := Default()
	o.MissingStrings = []string{"NA", ""}
	if !o.IsSentinel([]byte("NA")) {
		t.Errorf("expected NA to be a sentinel")
	}
	if o.IsSentinel([]byte("NA_EXTRA")) {
		t.Errorf("sentinel match must be whole-field, not substring")
	}
}

func TestIsTrueFalseString(t *testing.T) {
	o := Default()
	if !o.IsTrueString([]byte("TRUE")) || !o.IsFalseString([]byte("F")) {
		t.Errorf("default true/false vocab not recognized")
	}
	if o.IsTrueString([]byte("yes")) {
		t.Errorf("'yes' is not in the default true vocabulary")
	}
}

func TestWithColumnTypeByNameAndIndex(t *testing.T) {
	o := Default()
	WithColumnType("amount", "float")(&o)
	WithColumnTypeByIndex(2, "string")(&o)

	if o.TypesByName["amount"] != "float" {
		t.Errorf("TypesByName not set")
	}
	if o.TypesByIndex[2] != "string" {
		t.Errorf("TypesByIndex not set")
	}
}

func TestWithPoolToggle(t *testing.T) {
	o := Default()
	WithPool(true)(&o)
	if o.PoolThreshold == 0 {
		t.Errorf("WithPool(true) must enable a nonzero threshold")
	}
	WithPool(false)(&o)
	if o.PoolThreshold != 0 {
		t.Errorf("WithPool(false) must disable pooling")
	}
}
