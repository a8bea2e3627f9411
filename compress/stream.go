package compress

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/harriteja/lz4x/internal/xxh32"
)

var (
	magicModern = [4]byte{0x04, 0x22, 0x4D, 0x18}
	magicLegacy = [4]byte{0x02, 0x21, 0x4C, 0x18}
)

const (
	flagsVersionBits = 0b01000000
	flagsIndependent = 0x20
	uncompressedBit  = uint32(1) << 31
)

// Stater is an optional diagnostic interface a Reader/Writer may implement,
// surfaced by the CLI's -v flag but never required by the core.
type Stater interface {
	State() string
}

// Writer frames compressed blocks onto an underlying io.Writer: modern
// 7-byte-header frames, legacy 4-byte-magic frames, or headerless raw-block
// mode, per FrameOptions. It carries history across blocks unless
// Independent is set.
type Writer struct {
	w    io.Writer
	opts FrameOptions
	ctx  *Ctx

	history  []byte
	blockBuf []byte

	effectiveCode BlockSizeCode
	codeComputed  bool

	wroteHeader   bool
	closed        bool
	blocksWritten int
}

// NewWriter constructs a Writer. Write emits every block as soon as it is
// compressed; the returned Writer must be closed to emit the terminal
// end-marker (modern frames), and the header for a stream never written to.
func NewWriter(w io.Writer, opts FrameOptions) (*Writer, error) {
	if opts.Raw && opts.Legacy {
		return nil, fmt.Errorf("%w: raw-block mode and legacy-frames are mutually exclusive", ErrFormat)
	}
	if opts.BlockSizeCode == 0 {
		opts.BlockSizeCode = BlockSize4MB
	}
	if opts.BlockSizeCode < BlockSize64KB || opts.BlockSizeCode > BlockSize4MB {
		return nil, ErrInvalidBlockSizeCode
	}

	var history []byte
	if opts.DictionaryPath != "" {
		dict, err := LoadDictionary(opts.DictionaryPath)
		if err != nil {
			return nil, err
		}
		history = dict
	}

	maxBlock := opts.BlockSizeCode.Bytes()
	if opts.Legacy {
		maxBlock = legacyBlockSize
	}

	return &Writer{
		w:             w,
		opts:          opts,
		ctx:           NewCtxSize(maxBlock),
		history:       history,
		blockBuf:      make([]byte, maxBlock),
		effectiveCode: opts.BlockSizeCode,
	}, nil
}

// ensureEffectiveCode downgrades the configured block-size code to the
// smallest one that still covers remaining (see EffectiveBlockSizeCode),
// the first time it's called; later calls are no-ops so every block and the
// header agree on one code for the life of the stream. Raw and legacy
// framing have no selectable code to downgrade.
func (wr *Writer) ensureEffectiveCode(remaining int) {
	if wr.codeComputed || wr.opts.Raw || wr.opts.Legacy {
		return
	}
	wr.effectiveCode = EffectiveBlockSizeCode(wr.opts.BlockSizeCode, remaining)
	wr.codeComputed = true
}

func (wr *Writer) writeHeader() error {
	if wr.opts.Raw || wr.wroteHeader {
		return nil
	}
	if wr.opts.Legacy {
		if _, err := wr.w.Write(magicLegacy[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
		wr.wroteHeader = true
		return nil
	}

	flags := byte(flagsVersionBits)
	if wr.opts.Independent {
		flags |= flagsIndependent
	}
	blockMax := byte(wr.effectiveCode) << 4

	buf := make([]byte, 7)
	copy(buf[0:4], magicModern[:])
	buf[4] = flags
	buf[5] = blockMax
	sum := xxh32.Checksum(buf[4:6], 0)
	buf[6] = byte(sum >> 8)

	if _, err := wr.w.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	wr.wroteHeader = true
	return nil
}

// Write compresses p block by block, carrying history between calls unless
// Independent is set. It implements io.Writer.
func (wr *Writer) Write(p []byte) (int, error) {
	wr.ensureEffectiveCode(len(p))
	if err := wr.writeHeader(); err != nil {
		return 0, err
	}

	maxBlock := wr.effectiveCode.Bytes()
	if wr.opts.Legacy {
		maxBlock = legacyBlockSize
	}

	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > maxBlock {
			n = maxBlock
		}
		block := p[:n]
		p = p[n:]

		if err := wr.writeBlock(block); err != nil {
			return total, err
		}
		total += n

		if wr.opts.Independent || wr.opts.Legacy {
			wr.history = nil
		} else {
			wr.history = carryHistory(wr.history, block)
		}
	}
	return total, nil
}

func carryHistory(history, block []byte) []byte {
	combined := append(append([]byte(nil), history...), block...)
	if len(combined) > historySize {
		combined = combined[len(combined)-historySize:]
	}
	return combined
}

func (wr *Writer) writeBlock(block []byte) error {
	if wr.opts.Raw && wr.blocksWritten > 0 {
		return fmt.Errorf("%w: raw-block mode supports exactly one block", ErrFormat)
	}

	maxOut := MaxCompressedSize(len(block))
	if cap(wr.blockBuf) < maxOut {
		wr.blockBuf = make([]byte, maxOut)
	}
	out := wr.blockBuf[:maxOut]

	n, ok := wr.ctx.CompressBlock(wr.history, block, wr.opts.Options, out)

	if wr.opts.Raw {
		if !ok || n >= len(block) {
			return ErrRawIncompressible
		}
		if _, err := wr.w.Write(out[:n]); err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
		if _, err := wr.w.Write([]byte{0x00, 0x00}); err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
		wr.blocksWritten++
		return nil
	}

	var prefix [4]byte
	var payload []byte
	if ok && n < len(block) {
		binary.LittleEndian.PutUint32(prefix[:], uint32(n))
		payload = out[:n]
	} else {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(block))|uncompressedBit)
		payload = block
	}

	if _, err := wr.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	if _, err := wr.w.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	wr.blocksWritten++
	return nil
}

// Close flushes the terminal end-marker for modern frames. Legacy frames and
// raw-block mode have no terminal marker to write.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true

	// If Write was never called (e.g. an empty input), there's been no
	// chance to downgrade the block-size code yet; treat it as a
	// zero-byte remaining input so an empty stream still gets the
	// smallest code instead of the configured default.
	wr.ensureEffectiveCode(0)
	if err := wr.writeHeader(); err != nil {
		return err
	}
	if wr.opts.Raw || wr.opts.Legacy {
		return nil
	}

	var end [4]byte
	if _, err := wr.w.Write(end[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	return nil
}

// State reports the writer's framing mode, for the CLI's -v output.
func (wr *Writer) State() string {
	mode := "modern"
	switch {
	case wr.opts.Raw:
		mode = "raw"
	case wr.opts.Legacy:
		mode = "legacy"
	}
	return fmt.Sprintf("lz4x.Writer{mode=%s, blocks=%d}", mode, wr.blocksWritten)
}

// Reader decodes a framed or raw LZ4 stream, verifying the modern header
// checksum and tracking history the same way Writer produced it.
type Reader struct {
	r    io.Reader
	opts FrameOptions

	history []byte
	pending []byte

	legacy      bool
	raw         bool
	blockSize   int
	independent bool

	headerRead bool
	done       bool
}

// NewReader constructs a Reader. opts.Raw must match how the stream was
// produced (raw-block mode carries no self-describing header); all other
// fields are inferred from the frame header for non-raw streams.
func NewReader(r io.Reader, opts FrameOptions) (*Reader, error) {
	rd := &Reader{r: r, opts: opts, raw: opts.Raw}
	if opts.DictionaryPath != "" {
		dict, err := LoadDictionary(opts.DictionaryPath)
		if err != nil {
			return nil, err
		}
		rd.history = dict
	}
	if opts.Raw {
		rd.blockSize = opts.BlockSizeCode.Bytes()
		if rd.blockSize == 0 {
			rd.blockSize = BlockSize4MB.Bytes()
		}
		rd.independent = true
		rd.headerRead = true
	}
	return rd, nil
}

func (rd *Reader) readHeader() error {
	if rd.headerRead {
		return nil
	}
	rd.headerRead = true

	var magic [4]byte
	if _, err := io.ReadFull(rd.r, magic[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceRead, err)
	}

	switch magic {
	case magicModern:
		var rest [3]byte
		if _, err := io.ReadFull(rd.r, rest[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrSourceRead, err)
		}
		flags, blockMax, want := rest[0], rest[1], rest[2]
		if flags&0b11000000 != flagsVersionBits {
			return fmt.Errorf("%w: unsupported version bits", ErrFormat)
		}
		got := byte(xxh32.Checksum(rest[0:2], 0) >> 8)
		if got != want {
			return ErrChecksum
		}
		rd.independent = flags&flagsIndependent != 0
		code := BlockSizeCode(blockMax >> 4)
		if code < BlockSize64KB || code > BlockSize4MB {
			return ErrInvalidBlockSizeCode
		}
		rd.blockSize = code.Bytes()
	case magicLegacy:
		rd.legacy = true
		rd.independent = true
		rd.blockSize = legacyBlockSize
	default:
		return fmt.Errorf("%w: unrecognized magic", ErrFormat)
	}
	return nil
}

// Read implements io.Reader, decoding blocks on demand.
func (rd *Reader) Read(p []byte) (int, error) {
	for len(rd.pending) == 0 {
		if rd.done {
			return 0, io.EOF
		}
		if err := rd.readHeader(); err != nil {
			return 0, err
		}
		if err := rd.readBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, rd.pending)
	rd.pending = rd.pending[n:]
	return n, nil
}

func (rd *Reader) readBlock() error {
	if rd.raw {
		return rd.readRawBlock()
	}

	var prefix [4]byte
	_, err := io.ReadFull(rd.r, prefix[:])
	if err == io.EOF {
		if rd.legacy {
			rd.done = true
			return nil
		}
		return fmt.Errorf("%w: missing end marker", ErrFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceRead, err)
	}

	raw := binary.LittleEndian.Uint32(prefix[:])
	if raw == 0 {
		rd.done = true
		return nil
	}

	uncompressed := raw&uncompressedBit != 0
	size := int(raw &^ uncompressedBit)

	buf := make([]byte, size)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceRead, err)
	}

	var plain []byte
	if uncompressed {
		plain = buf
	} else {
		out, err := DecompressBlock(buf, rd.history, rd.blockSize)
		if err != nil {
			return err
		}
		plain = out
	}

	rd.pending = plain
	if rd.independent {
		rd.history = nil
	} else {
		rd.history = carryHistory(rd.history, plain)
	}
	return nil
}

func (rd *Reader) readRawBlock() error {
	if rd.done {
		return nil
	}
	all, err := io.ReadAll(rd.r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if len(all) < 2 || all[len(all)-2] != 0 || all[len(all)-1] != 0 {
		return fmt.Errorf("%w: missing raw-block sentinel", ErrFormat)
	}
	payload := all[:len(all)-2]

	out, err := DecompressBlock(payload, rd.history, rd.blockSize)
	if err != nil {
		return err
	}
	rd.pending = out
	rd.done = true
	return nil
}

// Close releases the reader's decoding buffers. The underlying io.Reader is
// not closed; callers own its lifetime.
func (rd *Reader) Close() error {
	rd.pending = nil
	rd.history = nil
	return nil
}

// State reports the reader's detected framing mode, for the CLI's -v output.
func (rd *Reader) State() string {
	mode := "modern"
	switch {
	case rd.raw:
		mode = "raw"
	case rd.legacy:
		mode = "legacy"
	}
	return fmt.Sprintf("lz4x.Reader{mode=%s, independent=%t}", mode, rd.independent)
}
