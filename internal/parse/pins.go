package parse

import (
	"fmt"

	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// ResolvePins computes the per-column user-pinned TypeCode (or zero
// for "infer") from the `type`/`types`/`type_map`-adjacent options:
// GlobalType pins every column; TypesByIndex/TypesByName override it
// per column. An invalid type name is a configuration error raised
// before parsing begins (spec.md §7 InvalidType).
func ResolvePins(colNames []string, o *options.Options) ([]tape.TypeCode, error) {
	pins := make([]tape.TypeCode, len(colNames))
	if o.GlobalType != "" {
		code, err := tape.ValidateUserType(o.GlobalType)
		if err != nil {
			return nil, fmt.Errorf("tapecsv: %w", err)
		}
		for i := range pins {
			pins[i] = code
		}
	}
	for i, name := range colNames {
		if t, ok := o.TypesByName[name]; ok {
			code, err := tape.ValidateUserType(t)
			if err != nil {
				return nil, fmt.Errorf("tapecsv: %w", err)
			}
			pins[i] = code
		}
		if t, ok := o.TypesByIndex[i]; ok {
			code, err := tape.ValidateUserType(t)
			if err != nil {
				return nil, fmt.Errorf("tapecsv: %w", err)
			}
			pins[i] = code
		}
	}
	return pins, nil
}
