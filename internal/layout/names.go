package layout

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// NormalizeNames maps each header name to a valid identifier
// (spec.md §4.2): fullwidth/halfwidth Unicode variants are folded to
// their canonical ASCII-ish form via golang.org/x/text/width (needed
// because header bytes are not guaranteed ASCII), invalid characters
// are replaced with '_', the first character is forced to a letter or
// '_', and duplicates are disambiguated by appending _1, _2, ....
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalizeOne(n)
	}
	return dedupe(out)
}

func normalizeOne(name string) string {
	name = width.Fold.String(name)
	if name == "" {
		return "_"
	}

	var b strings.Builder
	for i, r := range name {
		valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if i == 0 {
			isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
			if !isLetter {
				b.WriteByte('_')
				if (r >= '0' && r <= '9') || valid {
					b.WriteRune(r)
				}
				continue
			}
		}
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	result := b.String()
	if result == "" {
		return "_"
	}
	return result
}

// dedupe appends _1, _2, ... to later occurrences of a repeated name.
func dedupe(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		count := seen[n]
		seen[n] = count + 1
		if count == 0 {
			out[i] = n
		} else {
			out[i] = n + "_" + strconv.Itoa(count)
		}
	}
	return out
}
