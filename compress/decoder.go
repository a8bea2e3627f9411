package compress

import (
	"fmt"

	"github.com/harriteja/lz4x/internal/simdcopy"
)

// DecompressBlock is the verification decoder: it decodes an LZ4 block
// produced by this package (or any conformant LZ4 encoder) against a
// maximum output size, never writing past maxDecompressedSize and never
// reading past src's bounds regardless of how src has been corrupted. src
// must be exactly the block payload; a raw-block mode caller strips the
// trailing 0x0000 sentinel before calling this (the sentinel is a framing
// artifact, not part of the command stream).
//
// dict, if non-empty, is the history window preceding this block (e.g. from
// a dependent-blocks stream or a loaded dictionary); offsets may reach back
// into it.
func DecompressBlock(src []byte, dict []byte, maxDecompressedSize int) ([]byte, error) {
	// dst is the logical concatenation of dict and the output produced so
	// far; matches reference into it uniformly via a single growing
	// buffer so offsets never need special-casing across the boundary.
	dst := make([]byte, len(dict), len(dict)+maxDecompressedSize)
	copy(dst, dict)

	si := 0
	for si < len(src) {
		if si >= len(src) {
			return nil, fmt.Errorf("%w: truncated token", ErrInternalDecompression)
		}
		token := src[si]
		si++

		litLen := int(token >> 4)
		if litLen == 15 {
			for {
				if si >= len(src) {
					return nil, fmt.Errorf("%w: truncated literal varlen", ErrInternalDecompression)
				}
				b := src[si]
				si++
				litLen += int(b)
				if b != 255 {
					break
				}
			}
		}

		if si+litLen > len(src) {
			return nil, fmt.Errorf("%w: literal run exceeds source", ErrInternalDecompression)
		}
		if len(dst)+litLen > cap(dst) {
			return nil, fmt.Errorf("%w: output would exceed maximum size", ErrInternalDecompression)
		}
		dst = append(dst, src[si:si+litLen]...)
		si += litLen

		if si >= len(src) {
			// A block may legally end after its final literal run.
			break
		}

		if si+2 > len(src) {
			return nil, fmt.Errorf("%w: truncated offset", ErrInternalDecompression)
		}
		offset := int(src[si]) | int(src[si+1])<<8
		si += 2
		if offset == 0 {
			return nil, fmt.Errorf("%w: zero match offset", ErrInternalDecompression)
		}

		matchLen := int(token&0x0F) + 4
		if matchLen == 19 {
			for {
				if si >= len(src) {
					return nil, fmt.Errorf("%w: truncated match varlen", ErrInternalDecompression)
				}
				b := src[si]
				si++
				matchLen += int(b)
				if b != 255 {
					break
				}
			}
		}

		if offset > len(dst) {
			return nil, fmt.Errorf("%w: offset refers before start of buffer", ErrInternalDecompression)
		}
		if len(dst)+matchLen > cap(dst) {
			return nil, fmt.Errorf("%w: output would exceed maximum size", ErrInternalDecompression)
		}

		pos := len(dst)
		dst = dst[:pos+matchLen]
		simdcopy.RepeatCopy(dst, pos, offset, matchLen)
	}

	result := dst[len(dict):]
	return result, nil
}
