package compress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCtxCompressBlockRoundTrips(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"abcabcabcabc",
		strings.Repeat("x", 64*1024),
		strings.Repeat("ab", 500),
	}

	ctx := NewCtx()
	for _, in := range inputs {
		src := []byte(in)
		out := make([]byte, MaxCompressedSize(len(src)))
		n, ok := ctx.CompressBlock(nil, src, Options{}, out)
		if !ok {
			// An incompressible (or empty) block is a legitimate outcome;
			// nothing further to check here.
			continue
		}
		got, err := DecompressBlock(out[:n], nil, len(src))
		if err != nil {
			t.Fatalf("input %q: DecompressBlock: %v", in, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("input %q: round trip mismatch: got %q", in, got)
		}
	}
}

func TestCtxCompressBlockFavorSpeedRoundTrips(t *testing.T) {
	src := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200))
	ctx := NewCtx()
	out := make([]byte, MaxCompressedSize(len(src)))
	n, ok := ctx.CompressBlock(nil, src, Options{FavorSpeed: true}, out)
	if !ok {
		t.Fatalf("expected compressible input")
	}
	got, err := DecompressBlock(out[:n], nil, len(src))
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestCtxCompressBlockHonorsHistory(t *testing.T) {
	history := []byte(strings.Repeat("reference material ", 50))
	block := []byte("reference material reference material")

	ctx := NewCtx()
	out := make([]byte, MaxCompressedSize(len(block)))
	n, ok := ctx.CompressBlock(history, block, Options{}, out)
	if !ok {
		t.Fatalf("expected compressible input")
	}
	got, err := DecompressBlock(out[:n], history, len(block))
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Fatalf("round trip with history mismatch")
	}
}

func TestEffectiveBlockSizeCodeDowngradesForShortInput(t *testing.T) {
	got := EffectiveBlockSizeCode(BlockSize4MB, 80*1024)
	if got != BlockSize256KB {
		t.Fatalf("got %v, want BlockSize256KB", got)
	}
}

func TestEffectiveBlockSizeCodeKeepsConfiguredForLargeInput(t *testing.T) {
	got := EffectiveBlockSizeCode(BlockSize4MB, 10*1024*1024)
	if got != BlockSize4MB {
		t.Fatalf("got %v, want BlockSize4MB", got)
	}
}

func TestMaxCompressedSizeCoversAllLiterals(t *testing.T) {
	n := 1000
	src := make([]byte, n)
	for i := range src {
		src[i] = byte(i * 37)
	}
	ctx := NewCtx()
	out := make([]byte, MaxCompressedSize(n))
	// Random-looking data has no matches at all: the worst case the buffer
	// sizing formula must cover.
	n2, ok := ctx.CompressBlock(nil, src, Options{}, out)
	if !ok {
		t.Fatalf("MaxCompressedSize undersized the buffer for an all-literal block")
	}
	got, err := DecompressBlock(out[:n2], nil, n)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch")
	}
}
