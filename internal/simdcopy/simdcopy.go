// Package simdcopy detects CPU SIMD features and selects the widest safe
// copy word size for the block emitter's literal copies and the
// verification decoder's match-copy loop. Actual vectorised assembly is out
// of scope (the decoder/emitter only need to choose a stride); the feature
// detection itself is real and drives that choice.
package simdcopy

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// Features summarizes the SIMD-relevant CPU capabilities detected once per
// process.
type Features struct {
	HasSSE2   bool
	HasSSE41  bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool
}

var (
	detectOnce sync.Once
	detected   Features
)

// Detect returns the detected CPU feature set, computing it on first call.
func Detect() Features {
	detectOnce.Do(func() {
		detected = detectFeatures()
	})
	return detected
}

func detectFeatures() Features {
	var f Features
	switch runtime.GOARCH {
	case "amd64":
		f.HasSSE2 = cpu.X86.HasSSE2
		f.HasSSE41 = cpu.X86.HasSSE41
		f.HasAVX2 = cpu.X86.HasAVX2
		f.HasAVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW
	case "arm64":
		f.HasNEON = cpu.ARM64.HasASIMD
	}
	return f
}

// Stride is the copy word size (in bytes) the emitter and decoder should
// move per iteration of their bulk-copy loops.
type Stride int

const (
	Stride8  Stride = 8
	Stride16 Stride = 16
	Stride32 Stride = 32
	Stride64 Stride = 64
)

// BestStride picks the widest stride this CPU can exploit. It is a sizing
// decision only — the copy loops themselves remain ordinary Go slice copies,
// so picking a wider stride than the CPU truly accelerates is always safe,
// just not maximally fast.
func BestStride() Stride {
	f := Detect()
	switch {
	case f.HasAVX512:
		return Stride64
	case f.HasAVX2:
		return Stride32
	case f.HasSSE41, f.HasNEON:
		return Stride16
	default:
		return Stride8
	}
}

// WildCopy copies length bytes from src to dst, stride bytes at a time. It
// is used for literal runs, where src and dst never overlap, so each chunk
// can be copied independently of the others.
func WildCopy(dst, src []byte, length int, stride Stride) {
	n := int(stride)
	i := 0
	for ; i+n <= length; i += n {
		copy(dst[i:i+n], src[i:i+n])
	}
	if i < length {
		copy(dst[i:length], src[i:length])
	}
}

// RepeatCopy copies length bytes within dst from pos-offset to pos. offset
// may be smaller than the copy length (the classic LZ4 run-length-encoded
// repeat pattern), so a naive bulk copy is only safe when offset >= length
// (source and destination don't overlap at all).
//
// Between those extremes — offset >= the detected copy stride but < length
// — it's still safe to copy stride bytes at a time: each chunk only reads
// bytes at least `offset` positions behind its write cursor, and since
// offset >= stride, those bytes were already final before the chunk's own
// writes land. Only when offset itself is smaller than a single stride does
// the copy have to fall back to one byte at a time.
func RepeatCopy(dst []byte, pos, offset, length int) {
	if offset >= length {
		copy(dst[pos:pos+length], dst[pos-offset:pos-offset+length])
		return
	}

	stride := int(BestStride())
	if offset >= stride {
		i := 0
		for ; i+stride <= length; i += stride {
			copy(dst[pos+i:pos+i+stride], dst[pos-offset+i:pos-offset+i+stride])
		}
		for ; i < length; i++ {
			dst[pos+i] = dst[pos-offset+i]
		}
		return
	}

	for i := 0; i < length; i++ {
		dst[pos+i] = dst[pos-offset+i]
	}
}
