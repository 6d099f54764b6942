package tapecsv

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tapecsv/tapecsv/internal/field"
	"github.com/tapecsv/tapecsv/internal/layout"
	"github.com/tapecsv/tapecsv/internal/options"
	"github.com/tapecsv/tapecsv/internal/parallel"
	"github.com/tapecsv/tapecsv/internal/parse"
	"github.com/tapecsv/tapecsv/internal/progress"
	"github.com/tapecsv/tapecsv/internal/source"
	"github.com/tapecsv/tapecsv/internal/tape"
)

// ParseFile is the package's entry point (spec.md §6): it loads src,
// resolves layout, runs the Type Inference & Promotion / Tape Builder
// pipeline (single-threaded, transposed, or via the Parallel
// Coordinator, whichever applies), and assembles the produced File.
func ParseFile(src Source, opts ...Option) (*File, error) {
	o, err := options.New(opts...)
	if err != nil {
		return nil, newConfigError(configErrKind(err), err, err.Error())
	}
	return parseFileWithOptions(src, o)
}

// ParseFileWithConfig layers a declarative YAML configuration
// document (spec.md §6 "declarative config") under any in-code
// Options, the way the teacher's own CLI layers a config file under
// flag overrides: YAML values apply first, and any opts passed here
// win over matching YAML keys.
func ParseFileWithConfig(src Source, yamlConfig []byte, opts ...Option) (*File, error) {
	o, err := options.FromYAML(yamlConfig)
	if err != nil {
		return nil, newConfigError(ErrInvalidType, err, err.Error())
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := options.Validate(&o); err != nil {
		return nil, newConfigError(configErrKind(err), err, err.Error())
	}
	return parseFileWithOptions(src, o)
}

func parseFileWithOptions(src Source, o options.Options) (*File, error) {
	if o.RequestID == "" {
		o.RequestID = uuid.New().String()
	}
	if o.UsePersistedPins && src.Kind == source.KindPath {
		pins, perr := options.LoadPins(src.Path)
		if perr == nil {
			pins.Apply(&o)
		}
	}

	loaded, err := source.Load(src, &o)
	if err != nil {
		return nil, newConfigError(ErrInvalidSource, err, err.Error())
	}

	var reporter *progress.Reporter
	if o.OnProgress != nil {
		total := int64(loaded.End - loaded.Start)
		reporter = progress.NewReporter(total, func(s progress.Stats) {
			o.OnProgress(s.RowsScanned, s.BytesScanned)
		})
		o.ProgressHook = func(rowsDelta, bytesDelta int64) {
			reporter.AddRows(rowsDelta)
			reporter.AddBytes(bytesDelta)
		}
		reporter.Start()
		defer reporter.Stop()
	}

	fp := field.NewDefault()
	pathHint := ""
	if src.Kind == source.KindPath {
		pathHint = filepath.Ext(src.Path)
	}

	layoutResult, err := layout.Detect(loaded.Data, loaded.Start, loaded.End-loaded.Start, &o, fp, pathHint)
	if err != nil {
		_ = loaded.Close()
		return nil, toFileError(err)
	}

	pins, err := parse.ResolvePins(layoutResult.ColumnNames, &o)
	if err != nil {
		_ = loaded.Close()
		return nil, newConfigError(ErrInvalidType, err, err.Error())
	}

	var result *parse.Result
	switch {
	case o.Transpose:
		result, err = parse.RunTransposed(loaded.Data, layoutResult.DataStart, loaded.End, layoutResult.ColumnNames, &o, fp, layoutResult.EstimatedRows, pins)
	case parallel.ShouldRun(&o, layoutResult.EstimatedRows, len(layoutResult.ColumnNames)):
		result, err = parallel.Run(loaded.Data, layoutResult.DataStart, loaded.End, layoutResult.ColumnNames, &o, fp, layoutResult.EstimatedRows, pins)
	default:
		result, err = parse.Run(loaded.Data, layoutResult.DataStart, loaded.End, layoutResult.ColumnNames, &o, fp, layoutResult.EstimatedRows, pins)
	}
	if err != nil {
		_ = loaded.Close()
		return nil, toFileError(err)
	}

	f := buildFile(src, loaded, layoutResult.ColumnNames, result, &o)
	return f, nil
}

// buildFile assembles the produced File from one driver pass's
// result: it flattens each POOL column's ref map into the materialized
// refs array the root Column reads from, and carries over the escape
// configuration a buffer-backed STRING column needs to un-escape its
// bytes on read (spec.md §8 round-trip property).
func buildFile(src Source, loaded *source.Loaded, colNames []string, result *parse.Result, o *options.Options) *File {
	cols := make([]*Column, len(result.Columns))
	types := make([]tape.TypeCode, len(result.Columns))
	for i, pc := range result.Columns {
		typ := pc.Type()
		types[i] = typ
		col := &Column{
			name:       pc.Name,
			typ:        typ,
			t:          pc.Tape,
			buf:        loaded.Data,
			escapeByte: o.EscapeByte,
			closeQuote: o.CloseQuote,
		}
		if typ.Base() == tape.Pool {
			col.refs = pc.Pool.Flatten()
		}
		cols[i] = col
	}

	warnings := make([]Warning, len(result.Warnings))
	for i, w := range result.Warnings {
		warnings[i] = Warning{Row: w.Row, Col: w.Col, Message: w.Message}
	}

	name := ""
	if src.Kind == source.KindPath {
		name = src.Path
	}

	return &File{
		name:      name,
		names:     append([]string(nil), colNames...),
		types:     types,
		rows:      result.Rows,
		cols:      len(cols),
		columns:   cols,
		requestID: o.RequestID,
		warnings:  warnings,
		parsedAt:  time.Now().UTC(),
		buf:       loaded.Data,
		closer:    loaded.Close,
	}
}

// configErrKind classifies an options.Validate configuration error
// (spec.md §7): it only ever reports a delimiter or a header/data-row
// ordering problem, so a substring check is sufficient without
// teaching the options package about the root package's ErrKind enum.
func configErrKind(err error) ErrKind {
	if strings.Contains(err.Error(), "header row") {
		return ErrHeaderAfterData
	}
	return ErrInvalidDelimiter
}

// toFileError adapts a fatal error from the layout/parse stages into
// the public Error shape (spec.md §7 "Exit behavior").
func toFileError(err error) error {
	if cerr, ok := err.(*parse.CellError); ok {
		kind := ErrInvalidQuotedField
		if cerr.Kind == parse.KindStrict {
			kind = ErrStrict
		}
		return newCellError(kind, err, cerr.Row, cerr.Col, cerr.ByteOffset, cerr.Reason)
	}
	return newConfigError(ErrInvalidSource, err, err.Error())
}
