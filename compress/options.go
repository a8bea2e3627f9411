package compress

import (
	"github.com/harriteja/lz4x/internal/parse"
)

// Options configures a single block-compression pass (the ratio/speed
// tie-break and its associated fast-path truncation).
type Options struct {
	// FavorSpeed selects the speed-favoring tie-break weight (5) and
	// enables the (14,28]->14 truncation; the zero value favors ratio
	// (weight 1, no truncation).
	FavorSpeed bool
}

func (o Options) parseOptions() parse.Options {
	if o.FavorSpeed {
		return parse.Options{Weight: parse.FavorSpeed, Truncate148: true}
	}
	return parse.Options{Weight: parse.FavorRatio}
}

// BlockSizeCode identifies one of the four selectable modern block sizes
// (4: 64KiB, 5: 256KiB, 6: 1MiB, 7: 4MiB).
type BlockSizeCode uint8

const (
	BlockSize64KB  BlockSizeCode = 4
	BlockSize256KB BlockSizeCode = 5
	BlockSize1MB   BlockSizeCode = 6
	BlockSize4MB   BlockSizeCode = 7
)

// Bytes returns the block size in bytes for a modern block-size code.
func (c BlockSizeCode) Bytes() int {
	switch c {
	case BlockSize64KB:
		return 64 * 1024
	case BlockSize256KB:
		return 256 * 1024
	case BlockSize1MB:
		return 1024 * 1024
	case BlockSize4MB:
		return 4 * 1024 * 1024
	default:
		return 0
	}
}

// legacyBlockSize is the implicit block size for legacy frames.
const legacyBlockSize = 8 * 1024 * 1024

// historySize is H, the maximum previous-bytes window carried between
// dependent blocks.
const historySize = 65536

// FrameOptions configures the frame container: block size, independence,
// legacy/raw framing, and dictionary seeding.
type FrameOptions struct {
	BlockSizeCode BlockSizeCode
	Independent   bool
	Legacy        bool
	Raw           bool
	// DictionaryPath, if non-empty, seeds the first block's history with
	// the last historySize bytes of the named file.
	DictionaryPath string

	Options
}

// EffectiveBlockSizeCode picks the smallest code >= 4 whose block size
// still covers remaining, so a short input downgrades from a larger
// configured code rather than wasting a block on mostly-empty space. The
// chosen code is always recorded in the frame header; callers must not
// infer it from input length alone (see DESIGN.md).
func EffectiveBlockSizeCode(configured BlockSizeCode, remaining int) BlockSizeCode {
	if configured < BlockSize64KB || configured > BlockSize4MB {
		configured = BlockSize4MB
	}
	for code := BlockSize64KB; code < configured; code++ {
		if remaining <= code.Bytes() {
			return code
		}
	}
	return configured
}
