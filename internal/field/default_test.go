package field

import (
	"testing"

	"github.com/tapecsv/tapecsv/internal/options"
)

// TestDefaultParseUnescape covers spec.md §8 scenario 3: a quoted field
// containing an escaped quote must unescape to its literal form, and
// the canonical pool key is the unescaped string, not the raw bytes.
func TestDefaultParseUnescape(t *testing.T) {
	cases := []struct {
		name       string
		line       string // one field plus its terminator
		opt        options.Option
		wantStr    string
		wantStatus Status
	}{
		{
			// EscapeByte == CloseQuote: doubled-quote convention, the
			// default. `"he said ""hi"""` unescapes to `he said "hi"`.
			name:       "doubled quote",
			line:       `"he said ""hi"""` + "\n",
			wantStr:    `he said "hi"`,
			wantStatus: StatusEscapePresent,
		},
		{
			// EscapeByte != CloseQuote: backslash-escaping convention.
			// `"he said \"hi\""` unescapes the same way.
			name:       "backslash escape",
			line:       `"he said \"hi\""` + "\n",
			opt:        options.WithEscape('\\'),
			wantStr:    `he said "hi"`,
			wantStatus: StatusEscapePresent,
		},
		{
			name:       "no escape",
			line:       `"plain"` + "\n",
			wantStr:    "plain",
			wantStatus: 0,
		},
	}

	p := NewDefault()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var opts []options.Option
			if c.opt != nil {
				opts = append(opts, c.opt)
			}
			o, err := options.New(opts...)
			if err != nil {
				t.Fatalf("options.New: %v", err)
			}

			buf := []byte(c.line)
			res, err := p.Parse(TypeString, buf, 0, len(buf), &o)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !res.Status.Has(StatusOK) {
				t.Fatalf("Status = %v, want StatusOK set", res.Status)
			}
			if res.Str != c.wantStr {
				t.Fatalf("Str = %q, want %q", res.Str, c.wantStr)
			}
			if c.wantStatus != 0 && !res.Status.Has(c.wantStatus) {
				t.Fatalf("Status = %v, want %v set", res.Status, c.wantStatus)
			}
			if c.wantStatus == 0 && res.Status.Has(StatusEscapePresent) {
				t.Fatalf("Status = %v, want StatusEscapePresent unset", res.Status)
			}
			if res.Consumed != len(buf) {
				t.Fatalf("Consumed = %d, want %d", res.Consumed, len(buf))
			}
		})
	}
}

// TestUnescape exercises Unescape directly for both escaping
// conventions, independent of Parse's quote-scanning.
func TestUnescape(t *testing.T) {
	cases := []struct {
		name                  string
		in                    string
		escapeByte, closeByte byte
		want                  string
	}{
		{"doubled quote", `he said ""hi""`, '"', '"', `he said "hi"`},
		{"backslash", `he said \"hi\"`, '\\', '"', `he said "hi"`},
		{"no escapes", `plain text`, '"', '"', `plain text`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Unescape([]byte(c.in), c.escapeByte, c.closeByte)
			if string(got) != c.want {
				t.Fatalf("Unescape(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
