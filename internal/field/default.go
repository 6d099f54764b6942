package field

import (
	"strconv"
	"time"

	"github.com/tapecsv/tapecsv/internal/options"
)

// Default is the built-in Field Parser implementation. It handles
// quoting, escaping, whitespace trimming, sentinel matching, and
// delimiter/newline/EOF termination per spec.md §4.3.
//
// Precedence decision (spec.md §9 Open Question: "delimiters longer
// than one byte interacts with whitespace trimming"): this
// implementation trims whitespace FIRST, then matches the delimiter
// against what remains, i.e. whitespace between a field's content and
// a following multi-byte delimiter is trimmed and does not count
// toward delimiter matching. Documented here rather than left
// ambiguous.
type Default struct{}

// NewDefault returns the built-in parser.
func NewDefault() *Default { return &Default{} }

func isWhitespace(b, ws1, ws2 byte) bool { return b == ws1 || b == ws2 }

// delimIsSpaceLike reports whether the configured delimiter is a
// single space or tab byte, in which case whitespace trimming inside
// unquoted fields is disabled per spec.md §4.3.
func delimIsSpaceLike(delim []byte) bool {
	return len(delim) == 1 && (delim[0] == ' ' || delim[0] == '\t')
}

func matchDelim(buf []byte, i, end int, delim []byte) bool {
	if len(delim) == 0 || i+len(delim) > end {
		return false
	}
	for k, b := range delim {
		if buf[i+k] != b {
			return false
		}
	}
	return true
}

func delimBytes(o *options.Options) []byte {
	if o.Delim == "" {
		return []byte{','}
	}
	return []byte(o.Delim)
}

// Parse implements Parser.
func (p *Default) Parse(typ Type, buf []byte, pos, length int, o *options.Options) (Result, error) {
	end := pos + length
	if end > len(buf) {
		end = len(buf)
	}
	delim := delimBytes(o)
	trimWS := !delimIsSpaceLike(delim)

	i := pos
	if trimWS {
		for i < end && isWhitespace(buf[i], o.Whitespace1, o.Whitespace2) {
			i++
		}
	}

	var (
		contentStart, contentEnd int
		escapePresent            bool
		quoted                   bool
	)

	if i < end && buf[i] == o.OpenQuote {
		quoted = true
		i++
		contentStart = i
		closed := false
		for i < end {
			c := buf[i]
			if c == o.EscapeByte && o.EscapeByte != o.CloseQuote && i+1 < end && (buf[i+1] == o.CloseQuote || buf[i+1] == o.EscapeByte) {
				escapePresent = true
				i += 2
				continue
			}
			if c == o.CloseQuote {
				// Doubled-quote escaping (escape byte == close quote,
				// the common CSV convention): "" inside a quoted field
				// means a literal quote, not end of field.
				if o.EscapeByte == o.CloseQuote && i+1 < end && buf[i+1] == o.CloseQuote {
					escapePresent = true
					i += 2
					continue
				}
				contentEnd = i
				i++
				closed = true
				break
			}
			i++
		}
		if !closed {
			return Result{
				Status:     StatusInvalidQuote,
				ContentPos: contentStart,
				ContentLen: end - contentStart,
				Consumed:   end - pos,
			}, nil
		}
		// Consume trailing whitespace between close quote and delimiter.
		if trimWS {
			for i < end && isWhitespace(buf[i], o.Whitespace1, o.Whitespace2) {
				i++
			}
		}
	} else {
		contentStart = i
		for i < end {
			if matchDelim(buf, i, end, delim) {
				break
			}
			if buf[i] == '\n' {
				break
			}
			i++
		}
		contentEnd = i
		if trimWS {
			for contentEnd > contentStart && isWhitespace(buf[contentEnd-1], o.Whitespace1, o.Whitespace2) {
				contentEnd--
			}
		}
	}

	var status Status
	consumedEnd := i
	switch {
	case matchDelim(buf, i, end, delim):
		status |= StatusDelimTerminator
		consumedEnd = i + len(delim)
		if o.IgnoreRepeated {
			for matchDelim(buf, consumedEnd, end, delim) {
				consumedEnd += len(delim)
			}
		}
	case i < end && buf[i] == '\n':
		status |= StatusNewlineTerminator
		consumedEnd = i + 1
	case i < end && buf[i] == '\r' && i+1 < end && buf[i+1] == '\n':
		status |= StatusNewlineTerminator
		consumedEnd = i + 2
	default:
		status |= StatusEOFTerminator
		consumedEnd = end
	}

	fieldBytes := buf[contentStart:contentEnd]
	var raw []byte
	if escapePresent {
		raw = Unescape(fieldBytes, o.EscapeByte, o.CloseQuote)
	} else {
		raw = fieldBytes
	}
	if escapePresent {
		status |= StatusEscapePresent
	}

	res := Result{
		Status:     status,
		ContentPos: contentStart,
		ContentLen: contentEnd - contentStart,
		Consumed:   consumedEnd - pos,
	}
	_ = quoted

	if o.IsSentinel(raw) {
		res.Status |= StatusSentinel
		return res, nil
	}

	ok, err := parseTyped(typ, raw, o, &res)
	if !ok {
		// Non-matching parse: caller decides missing-vs-strict-error.
		return res, err
	}
	res.Status |= StatusOK
	return res, nil
}

func parseTyped(typ Type, raw []byte, o *options.Options, res *Result) (bool, error) {
	switch typ {
	case TypeInt64:
		s := raw
		if len(s) == 0 {
			return false, nil
		}
		v, err := strconv.ParseInt(string(s), 10, 64)
		if err != nil {
			return false, nil
		}
		res.Int64 = v
		return true, nil

	case TypeFloat64:
		s := raw
		if len(s) == 0 {
			return false, nil
		}
		if o.Decimal != '.' {
			s = replaceByte(s, o.Decimal, '.')
		}
		v, err := strconv.ParseFloat(string(s), 64)
		if err != nil {
			return false, nil
		}
		res.Float64 = v
		return true, nil

	case TypeBool:
		if o.IsTrueString(raw) {
			res.Bool = true
			return true, nil
		}
		if o.IsFalseString(raw) {
			res.Bool = false
			return true, nil
		}
		return false, nil

	case TypeDate:
		t, ok := parseTime(raw, o, dateLayouts(o))
		if !ok {
			return false, nil
		}
		days := t.Unix() / 86400
		res.DateDays = int32(days)
		return true, nil

	case TypeDateTime:
		t, ok := parseTime(raw, o, dateTimeLayouts(o))
		if !ok {
			return false, nil
		}
		res.DateTimeNs = t.UnixNano()
		return true, nil

	case TypeTime:
		t, ok := parseTime(raw, o, timeLayouts(o))
		if !ok {
			return false, nil
		}
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		res.TimeNs = t.Sub(midnight).Nanoseconds()
		return true, nil

	case TypeString:
		res.Str = string(raw)
		return true, nil
	}
	return false, nil
}

func dateLayouts(o *options.Options) []string {
	if o.DateFormat != "" {
		return []string{o.DateFormat}
	}
	return []string{"2006-01-02", "2006/01/02", "01/02/2006"}
}

func dateTimeLayouts(o *options.Options) []string {
	if o.DateFormat != "" {
		return []string{o.DateFormat}
	}
	return []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
}

func timeLayouts(o *options.Options) []string {
	if o.DateFormat != "" {
		return []string{o.DateFormat}
	}
	return []string{"15:04:05", "15:04"}
}

func parseTime(raw []byte, o *options.Options, layouts []string) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}
	s := string(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func replaceByte(b []byte, from, to byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	for i, c := range out {
		if c == from {
			out[i] = to
		}
	}
	return out
}

// Unescape removes escape-byte markers from a quoted field's content,
// turning (escape+closeQuote) and (escape+escape) pairs into a single
// literal byte. The un-escaped form is the canonical pool key
// (spec.md §4.6) and what a buffer-backed STRING column's read path
// must reproduce for an escaped field (spec.md §8 round-trip property).
func Unescape(b []byte, escapeByte, closeQuote byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == escapeByte && i+1 < len(b) && (b[i+1] == closeQuote || b[i+1] == escapeByte) {
			out = append(out, b[i+1])
			i++
			continue
		}
		out = append(out, c)
	}
	return out
}
