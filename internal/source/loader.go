// Package source implements the Source Loader (spec.md §4.1): it
// normalizes a path, byte buffer, byte stream, or sub-process spec
// into one contiguous read-only byte buffer, strips a leading UTF-8
// BOM, and optionally trims a trailing footer.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/pierrec/lz4/v4"

	"github.com/tapecsv/tapecsv/internal/options"
)

// Kind identifies which of the four accepted source shapes a Source
// value holds.
type Kind int

const (
	KindPath Kind = iota
	KindBuffer
	KindStream
	KindSubprocess
)

// Source describes one of {path, byte buffer, byte stream,
// sub-process spec} per the ParseFile entry point (spec.md §6).
type Source struct {
	Kind       Kind
	Path       string
	Buffer     []byte
	Stream     io.Reader
	SubProcess *exec.Cmd
}

func FromPath(path string) Source           { return Source{Kind: KindPath, Path: path} }
func FromBuffer(b []byte) Source            { return Source{Kind: KindBuffer, Buffer: b} }
func FromStream(r io.Reader) Source         { return Source{Kind: KindStream, Stream: r} }
func FromSubProcess(cmd *exec.Cmd) Source   { return Source{Kind: KindSubprocess, SubProcess: cmd} }

// Loaded is the contiguous buffer produced by Load, plus the offsets
// the rest of the pipeline must respect.
type Loaded struct {
	Data    []byte // full retained buffer (owns the BOM bytes, if any)
	Start   int    // offset into Data where content begins (post-BOM)
	End     int    // offset into Data where effective content ends (pre-footer)
	Mmapped bool

	unmap func() error
}

// Close releases any mmap backing the loaded buffer. It is a no-op
// for non-mmapped sources.
func (l *Loaded) Close() error {
	if l.unmap != nil {
		return l.unmap()
	}
	return nil
}

// bom is the 3-byte UTF-8 byte-order mark.
var bom = []byte{0xEF, 0xBB, 0xBF}

// lz4Magic is the LZ4 frame format magic number, used to sniff
// compressed byte streams so they can be transparently decompressed
// (spec expansion: see SPEC_FULL.md DOMAIN STACK).
var lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}

// Load normalizes src into a contiguous buffer.
func Load(src Source, o *options.Options) (*Loaded, error) {
	var data []byte
	var mmapped bool
	var unmap func() error

	switch src.Kind {
	case KindPath:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUnreadable, err)
		}
		defer f.Close()

		if o.UseMmap {
			d, um, err := mmapFile(f)
			if err == nil {
				data, mmapped, unmap = d, true, um
				break
			}
			// fall through to full read on mmap failure (e.g. empty file,
			// unsupported filesystem).
		}
		d, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUnreadable, err)
		}
		data = d

	case KindBuffer:
		data = src.Buffer

	case KindStream:
		if src.Stream == nil {
			return nil, errUnreadable
		}
		d, err := readMaybeCompressed(src.Stream)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUnreadable, err)
		}
		data = d

	case KindSubprocess:
		if src.SubProcess == nil {
			return nil, errUnreadable
		}
		out, err := src.SubProcess.Output()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUnreadable, err)
		}
		data = out

	default:
		return nil, errUnreadable
	}

	start := 0
	if len(data) >= 3 && bytes.Equal(data[:3], bom) {
		start = 3
	}

	end := len(data)
	if o.FooterSkip > 0 {
		end = trimFooter(data, start, end, o.FooterSkip, o.OpenQuote, o.CloseQuote)
	}

	return &Loaded{Data: data, Start: start, End: end, Mmapped: mmapped, unmap: unmap}, nil
}

func readMaybeCompressed(r io.Reader) ([]byte, error) {
	br := bufReaderFor(r)
	head, err := br.Peek(4)
	if err == nil && bytes.Equal(head, lz4Magic) {
		return io.ReadAll(lz4.NewReader(br))
	}
	return io.ReadAll(br)
}

// trimFooter scans backward from end to find the byte position that
// excludes the last k rows, respecting open/close quoting so a
// newline inside a quoted field is not mistaken for a row boundary.
func trimFooter(data []byte, start, end, k int, openQuote, closeQuote byte) int {
	if k <= 0 || end <= start {
		return end
	}
	pos := end
	// Drop every trailing CR/LF byte so trailing line breaks aren't
	// counted as extra (empty) rows.
	for pos > start && (data[pos-1] == '\n' || data[pos-1] == '\r') {
		pos--
	}
	rowsToSkip := k
	for rowsToSkip > 0 && pos > start {
		lineEnd := pos
		lineStart := previousLineStart(data, start, lineEnd, openQuote, closeQuote)
		pos = lineStart
		rowsToSkip--
	}
	return pos
}

// previousLineStart finds the start of the row immediately preceding
// lineEnd, walking backward and toggling quote state on close/open
// quote bytes so embedded newlines are skipped.
func previousLineStart(data []byte, start, lineEnd int, openQuote, closeQuote byte) int {
	i := lineEnd
	// Skip any trailing newline/CR bytes already at i.
	for i > start && (data[i-1] == '\n' || data[i-1] == '\r') {
		i--
	}
	inQuote := false
	for i > start {
		c := data[i-1]
		if inQuote {
			if c == openQuote {
				inQuote = false
			}
			i--
			continue
		}
		if c == closeQuote {
			inQuote = true
			i--
			continue
		}
		if c == '\n' {
			return i
		}
		i--
	}
	return start
}
