package compress

import (
	"github.com/harriteja/lz4x/internal/matchfind"
	"github.com/harriteja/lz4x/internal/simdcopy"
)

// emit walks the parsed command sequence forward and serialises it into the
// LZ4 block wire format, writing into out. w is the full window (history +
// current block) and match[i] corresponds to window position base+i.
//
// Returns the number of bytes written, or ok=false if out is too small (the
// "incompressible" signal: the caller substitutes an uncompressed block in
// framed mode, or returns ErrRawIncompressible in raw mode).
func emit(w []byte, base int, match []matchfind.Match, out []byte) (n int, ok bool) {
	count := len(match)
	pos := 0
	written := 0
	stride := simdcopy.BestStride()

	put := func(b byte) bool {
		if written >= len(out) {
			return false
		}
		out[written] = b
		written++
		return true
	}

	putVarlen := func(extra int) bool {
		for extra >= 255 {
			if !put(255) {
				return false
			}
			extra -= 255
		}
		return put(byte(extra))
	}

	// putLiterals bulk-copies a literal run in stride-sized chunks rather
	// than one byte at a time via put(); the run's source (w) and
	// destination (out) never overlap, so the whole run can be bounds
	// checked once up front.
	putLiterals := func(runStart, runLen int) bool {
		if written+runLen > len(out) {
			return false
		}
		simdcopy.WildCopy(out[written:written+runLen], w[base+runStart:base+runStart+runLen], runLen, stride)
		written += runLen
		return true
	}

	for pos < count {
		m := match[pos]
		if m.Length >= matchfind.MinMatch {
			// A match command with a zero-length preceding literal run.
			if !emitCommand(match, &pos, 0, put, putVarlen, putLiterals) {
				return 0, false
			}
			continue
		}

		// Count the literal run up to the next match start (or end).
		runStart := pos
		for pos < count && match[pos].Length < matchfind.MinMatch {
			pos++
		}
		runLen := pos - runStart

		if pos >= count {
			// Final command: literals only, no match.
			if !emitLiteralOnly(runStart, runLen, put, putVarlen, putLiterals) {
				return 0, false
			}
			break
		}

		if !emitCommand(match, &pos, runLen, put, putVarlen, putLiterals) {
			return 0, false
		}
	}

	return written, true
}

func emitLiteralOnly(runStart, runLen int, put func(byte) bool, putVarlen func(int) bool, putLiterals func(int, int) bool) bool {
	tokenLit := runLen
	if tokenLit > 15 {
		tokenLit = 15
	}
	if !put(byte(tokenLit << 4)) {
		return false
	}
	if runLen >= 15 {
		if !putVarlen(runLen - 15) {
			return false
		}
	}
	return putLiterals(runStart, runLen)
}

// emitCommand writes the command starting its literal run at match[*pos]-runLen
// (already consumed from the caller's perspective via runStart bookkeeping)
// through the match at *pos, then advances *pos past the match.
func emitCommand(match []matchfind.Match, pos *int, runLen int, put func(byte) bool, putVarlen func(int) bool, putLiterals func(int, int) bool) bool {
	matchStart := *pos
	m := match[matchStart]
	runStart := matchStart - runLen

	tokenLit := runLen
	if tokenLit > 15 {
		tokenLit = 15
	}
	encLen := int(m.Length) - matchfind.MinMatch
	tokenMatch := encLen
	if tokenMatch > 15 {
		tokenMatch = 15
	}

	if !put(byte(tokenLit<<4 | tokenMatch)) {
		return false
	}
	if runLen >= 15 {
		if !putVarlen(runLen - 15) {
			return false
		}
	}
	if !putLiterals(runStart, runLen) {
		return false
	}

	offset := uint16(m.Offset)
	if !put(byte(offset)) || !put(byte(offset >> 8)) {
		return false
	}
	if encLen >= 15 {
		if !putVarlen(encLen - 15) {
			return false
		}
	}

	*pos = matchStart + int(m.Length)
	return true
}
