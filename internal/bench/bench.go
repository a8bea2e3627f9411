// Package bench drives the -cbench/-dbench CLI commands: it compresses (and
// optionally decompresses) a corpus with the optimal compressor and with
// the classical hash-chain matcher (internal/classichc), reporting size and
// command-count for both so a caller can substantiate the claim that the
// optimal parser's output "decodes measurably faster... than one produced
// by classical LZ4-HC" (spec §1) — fewer commands means fewer per-command
// branches for a decoder to execute.
package bench

import (
	"time"

	"github.com/harriteja/lz4x/compress"
	"github.com/harriteja/lz4x/internal/classichc"
)

// Result holds one compressor's outcome over a corpus.
type Result struct {
	Name           string
	InputSize      int
	CompressedSize int
	CommandCount   int
	Elapsed        time.Duration
}

// CompressionReport pairs the optimal compressor's result with the
// classical HC baseline's, over the same input.
type CompressionReport struct {
	Optimal Result
	Classic Result
}

// RunCompression compresses data once with the optimal compressor (under
// opts) and once with the classical hash-chain matcher at level, returning
// both results.
func RunCompression(data []byte, opts compress.Options, level classichc.Level) CompressionReport {
	return CompressionReport{
		Optimal: runOptimal(data, opts),
		Classic: runClassic(data, level),
	}
}

func runOptimal(data []byte, opts compress.Options) Result {
	ctx := compress.NewCtxSize(len(data))
	defer ctx.Close()

	out := make([]byte, compress.MaxCompressedSize(len(data)))

	start := time.Now()
	n, ok := ctx.CompressBlock(nil, data, opts, out)
	elapsed := time.Since(start)

	size := n
	if !ok {
		size = len(data)
	}
	return Result{
		Name:           "optimal",
		InputSize:      len(data),
		CompressedSize: size,
		CommandCount:   countOptimalCommands(data, opts),
		Elapsed:        elapsed,
	}
}

// countOptimalCommands re-runs the compression and counts the commands in
// the emitted block. It is intentionally separate from runOptimal's timed
// compression so the reported Elapsed measures compression alone, not
// command-counting overhead.
func countOptimalCommands(data []byte, opts compress.Options) int {
	ctx := compress.NewCtxSize(len(data))
	defer ctx.Close()
	out := make([]byte, compress.MaxCompressedSize(len(data)))
	n, _ := ctx.CompressBlock(nil, data, opts, out)
	return countEmittedCommands(out[:n])
}

// countEmittedCommands walks a wire-format block and counts its commands,
// used as a decoder-agnostic proxy for "how many branches would a decoder
// take to process this stream".
func countEmittedCommands(block []byte) int {
	count := 0
	pos := 0
	for pos < len(block) {
		token := block[pos]
		pos++
		count++

		litLen := int(token >> 4)
		if litLen == 15 {
			for pos < len(block) {
				b := block[pos]
				pos++
				litLen += int(b)
				if b != 255 {
					break
				}
			}
		}
		pos += litLen
		if pos >= len(block) {
			break
		}
		pos += 2 // offset

		matchLen := int(token & 0x0F)
		if matchLen == 15 {
			for pos < len(block) {
				b := block[pos]
				pos++
				matchLen += int(b)
				if b != 255 {
					break
				}
			}
		}
	}
	return count
}

func runClassic(data []byte, level classichc.Level) Result {
	start := time.Now()
	commands := classichc.Parse(data, level)
	size := classichc.EncodedSize(commands)
	elapsed := time.Since(start)

	return Result{
		Name:           "classic-hc",
		InputSize:      len(data),
		CompressedSize: size,
		CommandCount:   len(commands),
		Elapsed:        elapsed,
	}
}

// RunDecompression decompresses compressed (produced by the optimal
// compressor with no history) and returns how long it took. It exists so
// -dbench has something to time beyond the round-trip already exercised by
// the self-test.
func RunDecompression(compressed []byte, maxSize int) (time.Duration, error) {
	start := time.Now()
	_, err := compress.DecompressBlock(compressed, nil, maxSize)
	return time.Since(start), err
}
