package source

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
)

// sampleSize mirrors the teacher's calculateFingerprint (csvquery
// internal/indexer/indexer.go): hashing a few samples instead of the
// whole file keeps fingerprinting cheap even for a multi-GB source.
const sampleSize = 512 * 1024

// Fingerprint identifies a path's current content well enough to
// decide whether a cached tapefile is stale: file size, mtime, and a
// sha1 over up to three 512KB samples (start, middle, end), the same
// sampling strategy as the teacher's csvDNA/calculateFingerprint.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := stat.Size()

	hasher := sha1.New()
	buf := make([]byte, sampleSize)

	n, _ := f.ReadAt(buf, 0)
	hasher.Write(buf[:n])

	if size > sampleSize*3 {
		n, _ = f.ReadAt(buf, size/2-sampleSize/2)
		hasher.Write(buf[:n])
	}

	if size > sampleSize {
		start := size - sampleSize
		if start < 0 {
			start = 0
		}
		n, _ = f.ReadAt(buf, start)
		hasher.Write(buf[:n])
	}

	return fmt.Sprintf("%d-%d-%s", size, stat.ModTime().Unix(), hex.EncodeToString(hasher.Sum(nil))), nil
}
