package tapecsv

import (
	"io"

	"github.com/tapecsv/tapecsv/internal/tape"
	"github.com/tapecsv/tapecsv/internal/tapefile"
)

// SaveTo persists f's tape, pool refs, and retained source buffer to
// w, so a later LoadFile call can reconstruct an equivalent File
// without re-parsing (spec.md §4.9 [ADD]).
func (f *File) SaveTo(w io.Writer) error {
	tapes := make([]*tape.Tape, len(f.columns))
	pools := make([][]string, len(f.columns))
	var escapeByte, closeQuote byte
	for i, c := range f.columns {
		tapes[i] = c.t
		if c.typ.Base() == tape.Pool {
			pools[i] = c.refs
		}
		escapeByte, closeQuote = c.escapeByte, c.closeQuote
	}
	return tapefile.Save(w, tapefile.Saved{
		RequestID:  f.requestID,
		Names:      f.names,
		Types:      f.types,
		Rows:       f.rows,
		Pools:      pools,
		Buf:        f.buf,
		EscapeByte: escapeByte,
		CloseQuote: closeQuote,
	}, tapes)
}

// LoadFile reconstructs a File previously written by SaveTo. The
// result is a fully independent File holding its own copy of the
// buffer; its Close is a no-op and never touches the original source.
func LoadFile(r io.Reader) (*File, error) {
	saved, tapes, err := tapefile.Load(r)
	if err != nil {
		return nil, newConfigError(ErrInvalidSource, err, err.Error())
	}

	cols := make([]*Column, len(saved.Names))
	for i, name := range saved.Names {
		col := &Column{
			name:       name,
			typ:        saved.Types[i],
			t:          tapes[i],
			buf:        saved.Buf,
			escapeByte: saved.EscapeByte,
			closeQuote: saved.CloseQuote,
		}
		if saved.Types[i].Base() == tape.Pool {
			col.refs = saved.Pools[i]
		}
		cols[i] = col
	}

	return &File{
		names:     append([]string(nil), saved.Names...),
		types:     saved.Types,
		rows:      saved.Rows,
		cols:      len(cols),
		columns:   cols,
		requestID: saved.RequestID,
		buf:       saved.Buf,
	}, nil
}
