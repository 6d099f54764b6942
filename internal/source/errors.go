package source

import (
	"bufio"
	"errors"
	"io"
)

// errUnreadable is wrapped into tapecsv.ErrInvalidSource at the root
// package boundary.
var errUnreadable = errors.New("source: input is neither readable nor recognized")

func bufReaderFor(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReaderSize(r, 64*1024)
}
