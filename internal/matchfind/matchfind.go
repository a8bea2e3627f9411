// Package matchfind walks a suffixidx.Index to produce, for each position in
// a parse range, the longest admissible match under the LZ4 offset window
// and end-of-block constraints.
package matchfind

import "github.com/harriteja/lz4x/internal/suffixidx"

// MinMatch is the shortest match length LZ4 can encode.
const MinMatch = 4

// MaxOffset is the largest match offset the 16-bit wire format can express.
const MaxOffset = 65535

// LastMatchOffset: the last match in a block must start at least this many
// bytes before the block's end, leaving room for the trailing literal run.
const LastMatchOffset = 12

// LastLiterals: the final bytes of a block are always emitted as literals,
// never as part of a match.
const LastLiterals = 5

// Match is a candidate (length, offset) pair. A zero value means "no match".
type Match struct {
	Length int32
	Offset int32
}

// Finder enumerates matches over an index built for a single window. The
// same Finder can be reused across Skip/FindAll calls as the parse position
// advances, since the underlying index's dynamic state (repr) is refreshed
// incrementally by Insert.
type Finder struct {
	idx *suffixidx.Index
}

// New wraps idx for match finding.
func New(idx *suffixidx.Index) *Finder {
	return &Finder{idx: idx}
}

// Skip advances the finder over [start, end) without recording matches. This
// is how the history prefix [0, H) is made available as match source
// material without ever being treated as something to parse.
func (f *Finder) Skip(start, end int) {
	for p := start; p < end; p++ {
		f.idx.Insert(p)
	}
}

// FindAll writes the best eligible match at every position in [start, end)
// into matches[p-start], then inserts p so later positions in the same call
// can reference it. end is the logical end of the block being parsed (used
// for the LastMatchOffset/LastLiterals forcing below); it need not equal the
// index's window length when a shorter effective block size is in play.
func (f *Finder) FindAll(start, end int, matches []Match) {
	for p := start; p < end; p++ {
		matches[p-start] = f.findOne(p, end)
		f.idx.Insert(p)
	}
}

func (f *Finder) findOne(p, end int) Match {
	if p > end-LastMatchOffset {
		return Match{}
	}

	maxLen := end - LastLiterals - p
	if maxLen < MinMatch {
		return Match{}
	}

	length, offset := f.idx.Candidate(p, MinMatch, MaxOffset)
	if length == 0 {
		return Match{}
	}
	if length > maxLen {
		length = maxLen
	}
	if length < MinMatch {
		return Match{}
	}
	return Match{Length: int32(length), Offset: int32(offset)}
}
