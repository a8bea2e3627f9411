package simdcopy

import "testing"

func TestBestStrideIsNeverZero(t *testing.T) {
	if s := BestStride(); s < Stride8 {
		t.Fatalf("BestStride() = %d, want >= %d", s, Stride8)
	}
}

func TestWildCopyCopiesFullLengthAtEveryStride(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog")
	for _, stride := range []Stride{Stride8, Stride16, Stride32, Stride64} {
		dst := make([]byte, len(src))
		WildCopy(dst, src, len(src), stride)
		if string(dst) != string(src) {
			t.Fatalf("stride %d: dst = %q, want %q", stride, dst, src)
		}
	}
}

func TestRepeatCopyHandlesOverlap(t *testing.T) {
	dst := make([]byte, 10)
	copy(dst, []byte("ab"))
	// offset=1 < length=5: classic LZ4 RLE-style repeat.
	RepeatCopy(dst, 2, 1, 5)
	want := "abbbbbb"
	if string(dst[:7]) != want {
		t.Fatalf("dst = %q, want %q", dst[:7], want)
	}
}

func TestRepeatCopyNonOverlapping(t *testing.T) {
	dst := make([]byte, 10)
	copy(dst, []byte("abcd"))
	RepeatCopy(dst, 4, 4, 4)
	if string(dst[:8]) != "abcdabcd" {
		t.Fatalf("dst = %q, want %q", dst[:8], "abcdabcd")
	}
}

// TestRepeatCopyStridedOverlap exercises offset >= stride but < length: the
// chunked fast path, rather than the plain bulk copy (offset >= length) or
// the byte-by-byte RLE path (offset < stride).
func TestRepeatCopyStridedOverlap(t *testing.T) {
	stride := int(BestStride())
	source := make([]byte, stride)
	for i := range source {
		source[i] = byte('a' + i%26)
	}

	length := stride * 3
	dst := make([]byte, stride+length)
	copy(dst, source)

	RepeatCopy(dst, stride, stride, length)

	want := make([]byte, length)
	for i := range want {
		want[i] = source[i%stride]
	}
	if string(dst[stride:stride+length]) != string(want) {
		t.Fatalf("dst = %q, want %q", dst[stride:stride+length], want)
	}
}
