// Package tapefile persists a parsed File's tape and pool refs to
// disk in LZ4-block-compressed form, adapted from the teacher's .cidx
// format (internal/common/cidx.go's BlockWriter/BlockReader): a magic
// header, a fixed-field section written with encoding/binary, then one
// LZ4-compressed block per column's packed tape slots. This lets a
// caller cache a ParseFile result and reload it without re-parsing
// (spec.md §4.9 [ADD]).
package tapefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/tapecsv/tapecsv/internal/tape"
)

// magic is the on-disk format identifier, the counterpart of the
// teacher's MagicCIDX.
const magic = "TCF1"

// Saved is everything besides the tape slots themselves that a File
// needs reconstructed: names, final types, the retained source buffer
// (offsets in a STRING column's poslen slots are only meaningful
// against this exact buffer), the escape configuration a buffer-backed
// STRING read needs, and each POOL column's materialized ref list.
type Saved struct {
	RequestID  string
	Names      []string
	Types      []tape.TypeCode
	Rows       int
	Pools      [][]string // nil entry for a non-POOL column
	Buf        []byte
	EscapeByte byte
	CloseQuote byte
}

// Save writes header, the Buf blob, then one compressed block per
// column's tape. Column i's tape must have exactly data.Rows rows.
func Save(w io.Writer, data Saved, tapes []*tape.Tape) error {
	if len(data.Names) != len(tapes) || len(data.Names) != len(data.Types) || len(data.Names) != len(data.Pools) {
		return fmt.Errorf("tapefile: names/types/pools/tapes length mismatch")
	}

	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := writeString(w, data.RequestID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(data.Rows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(data.Names))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, [2]byte{data.EscapeByte, data.CloseQuote}); err != nil {
		return err
	}
	if err := writeBlock(w, data.Buf); err != nil {
		return fmt.Errorf("tapefile: write buffer: %w", err)
	}

	for i, name := range data.Names {
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(data.Types[i])); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, int32(len(data.Pools[i]))); err != nil {
			return err
		}
		for _, key := range data.Pools[i] {
			if err := writeString(w, key); err != nil {
				return err
			}
		}
		if err := writeBlock(w, slotsToBytes(tapes[i].Slots)); err != nil {
			return fmt.Errorf("tapefile: write column %q: %w", name, err)
		}
	}
	return nil
}

// Load reverses Save.
func Load(r io.Reader) (Saved, []*tape.Tape, error) {
	var data Saved

	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(r, hdr); err != nil {
		return data, nil, err
	}
	if string(hdr) != magic {
		return data, nil, fmt.Errorf("tapefile: bad magic %q", hdr)
	}

	var err error
	if data.RequestID, err = readString(r); err != nil {
		return data, nil, err
	}
	var rows64 int64
	if err := binary.Read(r, binary.BigEndian, &rows64); err != nil {
		return data, nil, err
	}
	data.Rows = int(rows64)

	var ncols int32
	if err := binary.Read(r, binary.BigEndian, &ncols); err != nil {
		return data, nil, err
	}

	var quoteBytes [2]byte
	if err := binary.Read(r, binary.BigEndian, &quoteBytes); err != nil {
		return data, nil, err
	}
	data.EscapeByte, data.CloseQuote = quoteBytes[0], quoteBytes[1]

	data.Buf, err = readBlock(r)
	if err != nil {
		return data, nil, fmt.Errorf("tapefile: read buffer: %w", err)
	}

	data.Names = make([]string, ncols)
	data.Types = make([]tape.TypeCode, ncols)
	data.Pools = make([][]string, ncols)
	tapes := make([]*tape.Tape, ncols)

	for i := 0; i < int(ncols); i++ {
		if data.Names[i], err = readString(r); err != nil {
			return data, nil, err
		}
		var typ uint32
		if err := binary.Read(r, binary.BigEndian, &typ); err != nil {
			return data, nil, err
		}
		data.Types[i] = tape.TypeCode(typ)

		var poolLen int32
		if err := binary.Read(r, binary.BigEndian, &poolLen); err != nil {
			return data, nil, err
		}
		if poolLen > 0 {
			keys := make([]string, poolLen)
			for k := range keys {
				if keys[k], err = readString(r); err != nil {
					return data, nil, err
				}
			}
			data.Pools[i] = keys
		}

		blob, err := readBlock(r)
		if err != nil {
			return data, nil, fmt.Errorf("tapefile: read column %q: %w", data.Names[i], err)
		}
		slots := bytesToSlots(blob)
		tapes[i] = &tape.Tape{Slots: slots, Rows: data.Rows}
	}

	return data, tapes, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeBlock LZ4-compresses raw and writes it as [uncompressedLen
// int64][compressedLen int64][compressed bytes], the same
// length-prefixed shape as the teacher's BlockMeta.Length bookkeeping,
// but inline rather than sparse-indexed since a tapefile is read whole.
func writeBlock(w io.Writer, raw []byte) error {
	var comp bytes.Buffer
	lw := lz4.NewWriter(&comp)
	if _, err := lw.Write(raw); err != nil {
		return err
	}
	if err := lw.Close(); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(len(raw))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(comp.Len())); err != nil {
		return err
	}
	_, err := w.Write(comp.Bytes())
	return err
}

func readBlock(r io.Reader) ([]byte, error) {
	var rawLen, compLen int64
	if err := binary.Read(r, binary.BigEndian, &rawLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &compLen); err != nil {
		return nil, err
	}
	comp := make([]byte, compLen)
	if _, err := io.ReadFull(r, comp); err != nil {
		return nil, err
	}
	raw := make([]byte, rawLen)
	lr := lz4.NewReader(bytes.NewReader(comp))
	if _, err := io.ReadFull(lr, raw); err != nil && err != io.EOF {
		return nil, err
	}
	return raw, nil
}

func slotsToBytes(slots []uint64) []byte {
	out := make([]byte, len(slots)*8)
	for i, v := range slots {
		binary.BigEndian.PutUint64(out[i*8:], v)
	}
	return out
}

func bytesToSlots(b []byte) []uint64 {
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(b[i*8:])
	}
	return out
}
