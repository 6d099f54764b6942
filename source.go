package tapecsv

import (
	"io"
	"os/exec"

	"github.com/tapecsv/tapecsv/internal/source"
)

// Source is one of {path, byte buffer, byte stream, sub-process spec}
// accepted by ParseFile (spec.md §4.1 "Source Loader").
type Source = source.Source

// FromPath builds a Source backed by a file path on disk.
func FromPath(path string) Source { return source.FromPath(path) }

// FromBuffer builds a Source backed by an in-memory byte buffer.
func FromBuffer(b []byte) Source { return source.FromBuffer(b) }

// FromStream builds a Source backed by an io.Reader, read to
// completion (transparently LZ4-decompressed if it starts with an LZ4
// frame magic).
func FromStream(r io.Reader) Source { return source.FromStream(r) }

// FromSubProcess builds a Source backed by a sub-process's stdout.
func FromSubProcess(cmd *exec.Cmd) Source { return source.FromSubProcess(cmd) }

// Fingerprint identifies path's current content (size, mtime, and a
// sampled sha1) cheaply enough to use as a tapefile cache key: a
// caller can SaveTo a tapefile next to the source keyed by
// Fingerprint, and skip re-parsing on a later run when the
// fingerprint is unchanged.
func Fingerprint(path string) (string, error) { return source.Fingerprint(path) }
