package options

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the recognized Options keys from spec.md §6 for
// declarative (YAML/JSON) configuration, the way SimonWaldherr-tinySQL
// loads YAML-declared configuration instead of requiring Go code.
type yamlDoc struct {
	Header           *int              `yaml:"header" json:"header"`
	HeaderNames      []string          `yaml:"header_names" json:"header_names"`
	NormalizeNames   *bool             `yaml:"normalize_names" json:"normalize_names"`
	DataRow          int               `yaml:"datarow" json:"datarow"`
	SkipTo           int               `yaml:"skipto" json:"skipto"`
	FooterSkip       int               `yaml:"footerskip" json:"footerskip"`
	Limit            int               `yaml:"limit" json:"limit"`
	Transpose        bool              `yaml:"transpose" json:"transpose"`
	Comment          string            `yaml:"comment" json:"comment"`
	UseMmap          bool              `yaml:"use_mmap" json:"use_mmap"`
	IgnoreEmptyLines *bool             `yaml:"ignore_empty_lines" json:"ignore_empty_lines"`
	Threaded         string            `yaml:"threaded" json:"threaded"` // "auto"|"true"|"false"
	MissingStrings   []string          `yaml:"missing_strings" json:"missing_strings"`
	MissingString    string            `yaml:"missing_string" json:"missing_string"`
	Delim            string            `yaml:"delim" json:"delim"`
	IgnoreRepeated   bool              `yaml:"ignore_repeated" json:"ignore_repeated"`
	QuoteByte        string            `yaml:"quote_byte" json:"quote_byte"`
	OpenQuote        string            `yaml:"open_quote" json:"open_quote"`
	CloseQuote       string            `yaml:"close_quote" json:"close_quote"`
	EscapeByte       string            `yaml:"escape_byte" json:"escape_byte"`
	Decimal          string            `yaml:"decimal" json:"decimal"`
	TrueStrings      []string          `yaml:"true_strings" json:"true_strings"`
	FalseStrings     []string          `yaml:"false_strings" json:"false_strings"`
	DateFormat       string            `yaml:"date_format" json:"date_format"`
	Type             string            `yaml:"type" json:"type"`
	Types            map[string]string `yaml:"types" json:"types"`
	TypeMap          map[string]string `yaml:"type_map" json:"type_map"`
	Pool             *float64          `yaml:"pool" json:"pool"`
	Strict           bool              `yaml:"strict" json:"strict"`
	SilenceWarnings  bool              `yaml:"silence_warnings" json:"silence_warnings"`
}

// recognizedKeys whitelists the top-level keys accepted from a
// declarative config document; anything else is rejected per spec.md
// §6 "unknown keys rejected".
var recognizedKeys = map[string]bool{
	"header": true, "header_names": true, "normalize_names": true,
	"datarow": true, "skipto": true, "footerskip": true, "limit": true,
	"transpose": true, "comment": true, "use_mmap": true,
	"ignore_empty_lines": true, "threaded": true,
	"missing_strings": true, "missing_string": true, "delim": true,
	"ignore_repeated": true, "quote_byte": true, "open_quote": true,
	"close_quote": true, "escape_byte": true, "decimal": true,
	"true_strings": true, "false_strings": true, "date_format": true,
	"type": true, "types": true, "type_map": true, "pool": true,
	"strict": true, "silence_warnings": true,
}

func firstByte(s string, fallback byte) byte {
	if s == "" {
		return fallback
	}
	return s[0]
}

func (d *yamlDoc) apply(o *Options) {
	if d.Header != nil {
		o.Header = HeaderSpec{RowNumber: *d.Header}
	}
	if len(d.HeaderNames) > 0 {
		o.Header = HeaderSpec{Explicit: d.HeaderNames}
	}
	if d.NormalizeNames != nil {
		o.NormalizeNames = *d.NormalizeNames
	}
	if d.DataRow != 0 {
		o.DataRow = d.DataRow
	}
	if d.SkipTo != 0 {
		o.DataRow = d.SkipTo
	}
	o.FooterSkip = d.FooterSkip
	o.Limit = d.Limit
	o.Transpose = d.Transpose
	o.Comment = d.Comment
	o.UseMmap = d.UseMmap
	if d.IgnoreEmptyLines != nil {
		o.IgnoreEmptyLines = *d.IgnoreEmptyLines
	}
	switch d.Threaded {
	case "true", "always":
		o.Threaded = ThreadAlways
	case "false", "never":
		o.Threaded = ThreadNever
	case "", "auto":
		o.Threaded = ThreadAuto
	}
	if len(d.MissingStrings) > 0 {
		o.MissingStrings = d.MissingStrings
	} else if d.MissingString != "" {
		o.MissingStrings = []string{d.MissingString}
	}
	if d.Delim != "" {
		o.Delim = d.Delim
	}
	o.IgnoreRepeated = d.IgnoreRepeated
	if d.QuoteByte != "" {
		o.OpenQuote, o.CloseQuote = firstByte(d.QuoteByte, o.OpenQuote), firstByte(d.QuoteByte, o.CloseQuote)
	}
	if d.OpenQuote != "" {
		o.OpenQuote = firstByte(d.OpenQuote, o.OpenQuote)
	}
	if d.CloseQuote != "" {
		o.CloseQuote = firstByte(d.CloseQuote, o.CloseQuote)
	}
	if d.EscapeByte != "" {
		o.EscapeByte = firstByte(d.EscapeByte, o.EscapeByte)
	}
	if d.Decimal != "" {
		o.Decimal = firstByte(d.Decimal, o.Decimal)
	}
	if len(d.TrueStrings) > 0 {
		o.TrueStrings = d.TrueStrings
	}
	if len(d.FalseStrings) > 0 {
		o.FalseStrings = d.FalseStrings
	}
	if d.DateFormat != "" {
		o.DateFormat = d.DateFormat
	}
	if d.Type != "" {
		o.GlobalType = d.Type
	}
	if len(d.Types) > 0 {
		o.TypesByName = d.Types
	}
	if len(d.TypeMap) > 0 {
		o.TypeMap = d.TypeMap
	}
	if d.Pool != nil {
		o.PoolThreshold = *d.Pool
	}
	o.Strict = d.Strict
	o.SilenceWarnings = d.SilenceWarnings
}

// FromYAML parses a YAML document into an Options value layered on
// top of Default(). Unknown top-level keys are rejected.
func FromYAML(data []byte) (Options, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Options{}, fmt.Errorf("tapecsv/options: parse yaml: %w", err)
	}
	for k := range raw {
		if !recognizedKeys[k] {
			return Options{}, fmt.Errorf("tapecsv/options: unrecognized option key %q", k)
		}
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Options{}, fmt.Errorf("tapecsv/options: parse yaml: %w", err)
	}

	o := Default()
	doc.apply(&o)
	if err := Validate(&o); err != nil {
		return Options{}, err
	}
	return o, nil
}
