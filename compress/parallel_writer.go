package compress

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/harriteja/lz4x/internal/parallel"
	"github.com/harriteja/lz4x/internal/xxh32"
)

// ctxCompressor adapts a *Ctx into internal/parallel.BlockCompressor,
// binding a fixed Options so the dispatcher's factory can hand one private
// instance to each worker goroutine (see Ctx's single-goroutine contract).
type ctxCompressor struct {
	ctx  *Ctx
	opts Options
}

func (c *ctxCompressor) CompressBlock(block, out []byte) (int, bool) {
	return c.ctx.CompressBlock(nil, block, c.opts, out)
}

// ParallelWriter compresses a stream's independent blocks concurrently
// across a worker pool (internal/parallel.Dispatcher) and serialises the
// results to the underlying writer in their original order, producing a
// byte-identical stream to Writer for the same input and FrameOptions when
// no dictionary is set. FrameOptions.DictionaryPath is not used: every
// block, the first included, is compressed without history, whereas Writer
// compresses its first block against the dictionary.
//
// It requires FrameOptions.Independent: independent blocks carry no
// cross-block history, which is what makes out-of-order, concurrent
// compression of separate blocks valid in the first place. It rejects
// raw-block mode, which supports exactly one block and so has nothing to
// parallelise.
type ParallelWriter struct {
	w    io.Writer
	opts FrameOptions
	disp *parallel.Dispatcher

	maxBlock      int
	effectiveCode BlockSizeCode
	codeComputed  bool
	wroteHeader   bool
	closed        bool
	blocksWritten int
}

// NewParallelWriter constructs a ParallelWriter with numWorkers goroutines
// (numWorkers <= 0 selects runtime.GOMAXPROCS(0)).
func NewParallelWriter(w io.Writer, opts FrameOptions, numWorkers int) (*ParallelWriter, error) {
	if !opts.Independent {
		return nil, ErrParallelRequiresIndependent
	}
	if opts.Raw {
		return nil, fmt.Errorf("%w: raw-block mode supports exactly one block, nothing to parallelise", ErrFormat)
	}
	if opts.BlockSizeCode == 0 {
		opts.BlockSizeCode = BlockSize4MB
	}
	if opts.BlockSizeCode < BlockSize64KB || opts.BlockSizeCode > BlockSize4MB {
		return nil, ErrInvalidBlockSizeCode
	}

	maxBlock := opts.BlockSizeCode.Bytes()
	if opts.Legacy {
		maxBlock = legacyBlockSize
	}

	blockOpts := opts.Options
	factory := func() parallel.BlockCompressor {
		return &ctxCompressor{ctx: NewCtxSize(maxBlock), opts: blockOpts}
	}

	return &ParallelWriter{
		w:             w,
		opts:          opts,
		disp:          parallel.NewDispatcher(numWorkers, maxBlock, factory),
		maxBlock:      maxBlock,
		effectiveCode: opts.BlockSizeCode,
	}, nil
}

// NumWorkers returns the worker-pool size in use.
func (pw *ParallelWriter) NumWorkers() int { return pw.disp.NumWorkers() }

// ensureEffectiveCode mirrors Writer.ensureEffectiveCode: the first Write
// call's length stands in for "remaining input" so a short stream still
// downgrades its block-size code instead of writing the configured default
// into the header. Legacy framing has no selectable code.
func (pw *ParallelWriter) ensureEffectiveCode(remaining int) {
	if pw.codeComputed || pw.opts.Legacy {
		return
	}
	pw.effectiveCode = EffectiveBlockSizeCode(pw.opts.BlockSizeCode, remaining)
	pw.codeComputed = true
}

func (pw *ParallelWriter) writeHeader() error {
	if pw.wroteHeader {
		return nil
	}
	if pw.opts.Legacy {
		if _, err := pw.w.Write(magicLegacy[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
		pw.wroteHeader = true
		return nil
	}

	flags := byte(flagsVersionBits) | flagsIndependent
	blockMax := byte(pw.effectiveCode) << 4

	buf := make([]byte, 7)
	copy(buf[0:4], magicModern[:])
	buf[4] = flags
	buf[5] = blockMax
	sum := xxh32.Checksum(buf[4:6], 0)
	buf[6] = byte(sum >> 8)

	if _, err := pw.w.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	pw.wroteHeader = true
	return nil
}

// Write splits p into independent blocks of the configured size, compresses
// them concurrently, and writes each block's frame prefix and payload to
// the underlying writer in input order. It implements io.Writer.
func (pw *ParallelWriter) Write(p []byte) (int, error) {
	pw.ensureEffectiveCode(len(p))
	if err := pw.writeHeader(); err != nil {
		return 0, err
	}

	chunkSize := pw.effectiveCode.Bytes()
	if pw.opts.Legacy || chunkSize == 0 || chunkSize > pw.maxBlock {
		chunkSize = pw.maxBlock
	}

	var blocks [][]byte
	for rest := p; len(rest) > 0; {
		n := len(rest)
		if n > chunkSize {
			n = chunkSize
		}
		blocks = append(blocks, rest[:n])
		rest = rest[n:]
	}
	if len(blocks) == 0 {
		return 0, nil
	}

	results := pw.disp.CompressBlocks(blocks)

	total := 0
	for i, r := range results {
		if err := pw.writeBlockResult(blocks[i], r); err != nil {
			return total, err
		}
		total += len(blocks[i])
	}
	return total, nil
}

func (pw *ParallelWriter) writeBlockResult(block []byte, r parallel.Result) error {
	var prefix [4]byte
	var payload []byte
	if r.OK && r.N < len(block) {
		binary.LittleEndian.PutUint32(prefix[:], uint32(r.N))
		payload = r.Out[:r.N]
	} else {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(block))|uncompressedBit)
		payload = block
	}

	if _, err := pw.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	if _, err := pw.w.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	pw.blocksWritten++
	return nil
}

// Close flushes the terminal end-marker for modern frames. Legacy frames
// have no terminal marker to write.
func (pw *ParallelWriter) Close() error {
	if pw.closed {
		return nil
	}
	pw.closed = true

	pw.ensureEffectiveCode(0)
	if err := pw.writeHeader(); err != nil {
		return err
	}
	if pw.opts.Legacy {
		return nil
	}

	var end [4]byte
	if _, err := pw.w.Write(end[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	return nil
}

// State reports the writer's framing mode and worker count, for the CLI's
// -v output.
func (pw *ParallelWriter) State() string {
	mode := "modern"
	if pw.opts.Legacy {
		mode = "legacy"
	}
	return fmt.Sprintf("lz4x.ParallelWriter{mode=%s, workers=%d, blocks=%d}", mode, pw.disp.NumWorkers(), pw.blocksWritten)
}
