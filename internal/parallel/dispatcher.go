// Package parallel fans independent LZ4 blocks out across a fixed worker
// pool. It exists because the core compressor is a pure per-block function
// (see compress.Ctx): when a stream uses independent-blocks framing, blocks
// share no history and may legally be compressed out of order, so a stream
// of many blocks can be compressed wall-clock faster than sequentially by
// giving each worker its own Ctx-backed compressor.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultChunkSize is used by callers that let the dispatcher pick block
// sizing on its own (the CLI instead always derives chunk size from the
// configured FrameOptions.BlockSizeCode).
const DefaultChunkSize = 1 << 20

// BlockCompressor compresses one independent block into out, returning the
// number of bytes written and whether the block was compressible at all
// (false means "incompressible": the caller substitutes an uncompressed
// block). Each worker goroutine owns a private BlockCompressor instance so
// no mutable state is ever shared across goroutines, matching the core's
// single-threaded-per-Ctx contract.
type BlockCompressor interface {
	CompressBlock(block, out []byte) (n int, ok bool)
}

// Result is one block's compression outcome, tagged with its position in
// the original input so out-of-order completion can be reassembled.
type Result struct {
	Index int
	Out   []byte
	N     int
	OK    bool
}

type job struct {
	index int
	block []byte
}

// Dispatcher owns a worker pool sized at construction and a factory for
// per-worker compressors. It holds no per-call state; CompressBlocks may be
// called repeatedly (e.g. once per Write on a streaming ParallelWriter).
type Dispatcher struct {
	numWorkers    int
	maxOut        int
	newCompressor func() BlockCompressor
}

// NewDispatcher creates a Dispatcher with numWorkers goroutines (<=0 selects
// runtime.GOMAXPROCS(0)), sized to compress blocks of at most maxBlockSize
// bytes. newCompressor is called once per worker goroutine to build that
// worker's private BlockCompressor.
func NewDispatcher(numWorkers, maxBlockSize int, newCompressor func() BlockCompressor) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{
		numWorkers:    numWorkers,
		maxOut:        maxBlockSize + maxBlockSize/255 + 16,
		newCompressor: newCompressor,
	}
}

// NumWorkers returns the worker-pool size the dispatcher was constructed
// with.
func (d *Dispatcher) NumWorkers() int { return d.numWorkers }

// CompressBlocks compresses every block in blocks concurrently across the
// worker pool and returns their results in the same order as blocks,
// regardless of which worker finished which block first. Each worker
// processes a disjoint subsequence of blocks in order (job stealing within
// that subsequence is unnecessary since blocks are independent and
// uniformly sized), so results[i] always corresponds to blocks[i].
func (d *Dispatcher) CompressBlocks(blocks [][]byte) []Result {
	if len(blocks) == 0 {
		return nil
	}

	numWorkers := d.numWorkers
	if numWorkers > len(blocks) {
		numWorkers = len(blocks)
	}

	jobs := make(chan job, len(blocks))
	for i, b := range blocks {
		jobs <- job{index: i, block: b}
	}
	close(jobs)

	collector := newResultsCollector(len(blocks))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			bc := d.newCompressor()
			for j := range jobs {
				out := make([]byte, d.maxOut)
				n, ok := bc.CompressBlock(j.block, out)
				collector.set(Result{Index: j.index, Out: out, N: n, OK: ok})
			}
		}()
	}
	wg.Wait()

	return collector.ordered()
}
