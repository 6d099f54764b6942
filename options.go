package tapecsv

import "github.com/tapecsv/tapecsv/internal/options"

// Option configures a ParseFile call. It is the root package's public
// alias of internal/options.Option, so callers never import an
// internal package directly.
type Option = options.Option

var (
	WithDelim                    = options.WithDelim
	WithHeaderRow                = options.WithHeaderRow
	WithHeaderRange              = options.WithHeaderRange
	WithHeaderNames              = options.WithHeaderNames
	WithNoHeader                 = options.WithNoHeader
	WithDataRow                  = options.WithDataRow
	WithFooterSkip               = options.WithFooterSkip
	WithLimit                    = options.WithLimit
	WithTranspose                = options.WithTranspose
	WithComment                  = options.WithComment
	WithMmap                     = options.WithMmap
	WithWorkers                  = options.WithWorkers
	WithMissingStrings           = options.WithMissingStrings
	WithIgnoreRepeatedDelimiters = options.WithIgnoreRepeatedDelimiters
	WithQuote                    = options.WithQuote
	WithOpenCloseQuote           = options.WithOpenCloseQuote
	WithEscape                   = options.WithEscape
	WithDecimal                  = options.WithDecimal
	WithBoolStrings              = options.WithBoolStrings
	WithDateFormat               = options.WithDateFormat
	WithType                     = options.WithType
	WithColumnType               = options.WithColumnType
	WithColumnTypeByIndex        = options.WithColumnTypeByIndex
	WithTypeMap                  = options.WithTypeMap
	WithPool                     = options.WithPool
	WithPoolFraction             = options.WithPoolFraction
	WithStrict                   = options.WithStrict
	WithSilenceWarnings          = options.WithSilenceWarnings
	WithRequestID                = options.WithRequestID
	WithPersistedPins            = options.WithPersistedPins
)

// ThreadMode controls whether the Parallel Coordinator may run.
type ThreadMode = options.ThreadMode

const (
	ThreadAuto   = options.ThreadAuto
	ThreadAlways = options.ThreadAlways
	ThreadNever  = options.ThreadNever
)

// WithThreaded overrides automatic thread-mode selection.
func WithThreaded(mode ThreadMode) Option { return options.WithThreaded(mode) }

// WithOnWarning installs a callback invoked for every non-fatal
// ParseWarning (spec.md §7), unless SilenceWarnings is set.
func WithOnWarning(fn func(Warning)) Option {
	return options.WithOnWarning(func(w options.Warning) {
		fn(Warning{Row: w.Row, Col: w.Col, Message: w.Message})
	})
}

// WithOnProgress installs a progress callback; ParseFile wires it into
// the ticker-driven reporter in internal/progress whenever it is set.
func WithOnProgress(fn func(rowsScanned, bytesScanned int64)) Option {
	return options.WithOnProgress(fn)
}
