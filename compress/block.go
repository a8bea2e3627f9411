// Package compress implements the optimal LZ4 block/frame compressor: a
// suffix-array match finder, a reverse-DP optimal parser, a peephole
// command-count reducer, and a byte-exact emitter, wired together by a
// reusable per-context driver, plus the frame container, dictionary
// loading, and a verification decoder.
package compress

import (
	"github.com/harriteja/lz4x/internal/matchfind"
	"github.com/harriteja/lz4x/internal/parse"
	"github.com/harriteja/lz4x/internal/peephole"
	"github.com/harriteja/lz4x/internal/suffixidx"
)

// Ctx is a reusable compression context. It owns two buffers sized from the
// maximum configured window, allocated once and reused across blocks: the
// window (history + current block) and the match array. The suffix-array
// and LCP-interval index is not kept: CompressBlock builds a new one for
// every block. A Ctx is not
// safe for concurrent use; give each goroutine its own (see
// internal/parallel for block-level fan-out).
type Ctx struct {
	maxWindow int

	window  []byte // history (up to historySize) + current block
	matches []matchfind.Match
}

// NewCtx creates a context sized for the largest modern block size (4MiB)
// plus history.
func NewCtx() *Ctx {
	return NewCtxSize(BlockSize4MB.Bytes())
}

// NewCtxSize creates a context sized for a specific maximum block size (in
// bytes, excluding history).
func NewCtxSize(maxBlockBytes int) *Ctx {
	maxWindow := historySize + maxBlockBytes
	return &Ctx{
		maxWindow: maxWindow,
		window:    make([]byte, 0, maxWindow),
		matches:   make([]matchfind.Match, maxBlockBytes),
	}
}

// Close releases the context's buffers.
func (c *Ctx) Close() {
	c.window = nil
	c.matches = nil
}

// CompressBlock compresses the current-block bytes block, with history
// bytes preceding it (history may be empty for an independent block), into
// out. It returns the number of bytes written and whether the block was
// compressible at all (false means "incompressible": the caller must
// substitute an uncompressed block, or fail in raw mode).
//
// history must be at most historySize bytes of old data that legitimately
// precedes block in the stream; it is never itself scored as parseable.
func (c *Ctx) CompressBlock(history, block []byte, opts Options, out []byte) (n int, ok bool) {
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}

	h := len(history)
	total := h + len(block)
	if cap(c.window) < total {
		c.window = make([]byte, total)
	} else {
		c.window = c.window[:total]
	}
	copy(c.window, history)
	copy(c.window[h:], block)

	if cap(c.matches) < len(block) {
		c.matches = make([]matchfind.Match, len(block))
	}
	matches := c.matches[:len(block)]

	idx := suffixidx.Build(c.window)
	finder := matchfind.New(idx)
	finder.Skip(0, h)
	finder.FindAll(h, total, matches)

	// The reverse DP and peephole pass both operate over the block's own
	// index range [0, len(block)), while the match array already holds
	// window-relative offsets computed by the finder over [h, total); an
	// offset is independent of which absolute position it was measured
	// from, so this re-indexing changes nothing about validity.
	parse.Run(matches, opts.parseOptions())
	peephole.Run(c.window, h, matches)

	return emit(c.window, h, matches, out)
}

// MaxCompressedSize returns a buffer size guaranteed to hold the worst-case
// compressed output of an n-byte block (all-literal, including varlen
// overhead), the figure a driver uses to size its scratch buffer.
func MaxCompressedSize(n int) int {
	return n + n/255 + 16
}
