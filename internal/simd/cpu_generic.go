//go:build !amd64

package simd

// HasAVX2 always reports false on non-amd64 platforms.
func HasAVX2() bool {
	return false
}
