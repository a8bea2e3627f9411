package compress

import "errors"

// Error taxonomy. Each sentinel corresponds to one failure class a caller
// needs to distinguish; wrapped with fmt.Errorf("...: %w", ...) at the
// point of detection when more context is useful.
var (
	ErrSourceRead  = errors.New("lz4x: source read failed")
	ErrSinkWrite   = errors.New("lz4x: sink write failed")
	ErrDictionary  = errors.New("lz4x: dictionary read failed")
	ErrOutOfMemory = errors.New("lz4x: allocation failed")

	ErrInternalCompression   = errors.New("lz4x: internal compression invariant violated")
	ErrInternalDecompression = errors.New("lz4x: internal decompression invariant violated")

	ErrRawTooLarge       = errors.New("lz4x: raw-block input exceeds the maximum block size")
	ErrRawIncompressible = errors.New("lz4x: raw-block input is incompressible")

	ErrFormat   = errors.New("lz4x: invalid frame format")
	ErrChecksum = errors.New("lz4x: header checksum mismatch")

	ErrInvalidBlockSizeCode = errors.New("lz4x: block-size code must be 4-7")
	ErrParallelRequiresIndependent = errors.New("lz4x: parallel writer requires independent-blocks mode")
)
