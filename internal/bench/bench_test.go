package bench

import (
	"crypto/rand"
	"testing"

	"github.com/harriteja/lz4x/compress"
	"github.com/harriteja/lz4x/internal/classichc"
)

const (
	smallSize  = 1 << 10
	mediumSize = 1 << 16
	largeSize  = 1 << 20
)

// generateData returns size bytes whose compressibility is controlled by
// repeating a pattern of size*(1-compressibility) bytes; compressibility=0
// is fully random, compressibility=1 is all zero.
func generateData(size int, compressibility float64) []byte {
	data := make([]byte, size)
	if compressibility <= 0 {
		rand.Read(data)
		return data
	}
	if compressibility >= 1 {
		return data
	}

	patternSize := int(float64(size) * (1 - compressibility))
	if patternSize < 4 {
		patternSize = 4
	}
	pattern := make([]byte, patternSize)
	rand.Read(pattern)

	for i := 0; i < size; i += patternSize {
		n := copy(data[i:], pattern)
		if n < patternSize {
			break
		}
	}
	return data
}

func BenchmarkOptimalCompress(b *testing.B) {
	for _, size := range []int{smallSize, mediumSize} {
		for _, comp := range []float64{0.0, 0.5, 0.9} {
			data := generateData(size, comp)
			b.Run(benchName(size, comp), func(b *testing.B) {
				ctx := compress.NewCtxSize(len(data))
				defer ctx.Close()
				out := make([]byte, compress.MaxCompressedSize(len(data)))
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					ctx.CompressBlock(nil, data, compress.Options{}, out)
				}
			})
		}
	}
}

func BenchmarkClassicHCCompress(b *testing.B) {
	for _, size := range []int{smallSize, mediumSize} {
		for _, comp := range []float64{0.0, 0.5, 0.9} {
			data := generateData(size, comp)
			b.Run(benchName(size, comp), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					classichc.Parse(data, classichc.LevelHigh)
				}
			})
		}
	}
}

func benchName(size int, comp float64) string {
	switch size {
	case smallSize:
		return "1KB"
	case mediumSize:
		return "64KB"
	case largeSize:
		return "1MB"
	default:
		return "?"
	}
}

func TestRunCompressionReportsBothCompressors(t *testing.T) {
	data := generateData(mediumSize, 0.8)
	report := RunCompression(data, compress.Options{}, classichc.LevelHigh)

	if report.Optimal.CompressedSize <= 0 {
		t.Errorf("optimal compressed size = %d, want > 0", report.Optimal.CompressedSize)
	}
	if report.Classic.CompressedSize <= 0 {
		t.Errorf("classic compressed size = %d, want > 0", report.Classic.CompressedSize)
	}
	if report.Optimal.CommandCount <= 0 {
		t.Errorf("optimal command count = %d, want > 0", report.Optimal.CommandCount)
	}
	if report.Optimal.CompressedSize > report.Classic.CompressedSize {
		t.Errorf("optimal size %d > classic size %d on highly compressible input", report.Optimal.CompressedSize, report.Classic.CompressedSize)
	}
}

func TestRunDecompressionRoundTrips(t *testing.T) {
	data := generateData(smallSize, 0.9)
	ctx := compress.NewCtxSize(len(data))
	defer ctx.Close()
	out := make([]byte, compress.MaxCompressedSize(len(data)))
	n, ok := ctx.CompressBlock(nil, data, compress.Options{}, out)
	if !ok {
		t.Fatal("expected compressible input")
	}

	if _, err := RunDecompression(out[:n], len(data)); err != nil {
		t.Fatalf("RunDecompression: %v", err)
	}
}
