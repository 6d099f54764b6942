package parse

import (
	"testing"

	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

func runDefault(t *testing.T, data string, cols []string) (*Result, *options.Options) {
	t.Helper()
	o := options.Default()
	fp := field.NewDefault()
	buf := []byte(data)
	res, err := Run(buf, 0, len(buf), cols, &o, fp, 4, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, &o
}

func TestRunIntToFloatPromotion(t *testing.T) {
	res, _ := runDefault(t, "1\n2\n3.5\n", []string{"n"})
	col := res.Columns[0]
	if col.Type().Base() != tape.Float {
		t.Fatalf("column type: got %v want Float", col.Type().Base())
	}
	for i, want := range []float64{1, 2, 3.5} {
		got := tape.UnpackFloat64FromPossiblyInt(col.Tape.PosLenAt(i), col.Tape.ValueAt(i))
		if got != want {
			t.Errorf("row %d: got %v want %v", i, got, want)
		}
	}
}

func TestRunPromotesToString(t *testing.T) {
	res, _ := runDefault(t, "1\n2\nabc\n", []string{"n"})
	col := res.Columns[0]
	if col.Type().Base() != tape.String {
		t.Fatalf("column type: got %v want String", col.Type().Base())
	}
}

func TestRunTooFewFieldsWarns(t *testing.T) {
	res, _ := runDefault(t, "1,2\n3\n", []string{"a", "b"})
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a row-shape warning for the short row")
	}
	b := res.Columns[1]
	if !b.Tape.PosLenAt(1).Missing {
		t.Errorf("short row's missing trailing column must be marked missing")
	}
}

func TestRunTooManyFieldsWarns(t *testing.T) {
	res, _ := runDefault(t, "1,2,3\n4,5\n", []string{"a", "b"})
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a row-shape warning for the overlong row")
	}
	if res.Rows != 2 {
		t.Fatalf("Rows: got %d want 2", res.Rows)
	}
}

func TestRunMissingSentinel(t *testing.T) {
	res, _ := runDefault(t, "1,\n,2\n", []string{"a", "b"})
	a, b := res.Columns[0], res.Columns[1]
	if !a.Tape.PosLenAt(1).Missing {
		t.Errorf("a[1] should be missing (empty field)")
	}
	if !b.Tape.PosLenAt(0).Missing {
		t.Errorf("b[0] should be missing (empty field)")
	}
}

func TestRunPoolDeduplicates(t *testing.T) {
	o := options.Default()
	o.PoolThreshold = 0.5
	fp := field.NewDefault()
	data := "US\nCA\nUS\nUS\n"
	buf := []byte(data)
	res, err := Run(buf, 0, len(buf), []string{"code"}, &o, fp, 4, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	col := res.Columns[0]
	if col.Type().Base() != tape.Pool {
		t.Fatalf("expected POOL column with low cardinality, got %v", col.Type().Base())
	}
	if col.Pool.Len() != 2 {
		t.Errorf("pool cardinality: got %d want 2", col.Pool.Len())
	}
}

func TestRunUserPinnedTypeCoercesInvalid(t *testing.T) {
	o := options.Default()
	fp := field.NewDefault()
	data := "1\nnotanumber\n3\n"
	buf := []byte(data)
	pins := []tape.TypeCode{tape.Int.WithUser()}
	res, err := Run(buf, 0, len(buf), []string{"n"}, &o, fp, 4, pins)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a coercion warning for the invalid pinned-type value")
	}
	if !res.Columns[0].Tape.PosLenAt(1).Missing {
		t.Errorf("invalid pinned value must be coerced to missing, not left as-is")
	}
}
