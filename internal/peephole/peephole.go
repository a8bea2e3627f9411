// Package peephole implements the forward command-count reducer: a single
// pass over a parsed command sequence that demotes small matches to
// literals, or fuses consecutive matches, whenever doing so does not enlarge
// the emitted byte stream.
package peephole

import "github.com/harriteja/lz4x/internal/matchfind"

const (
	minMatch           = matchfind.MinMatch
	maxOffset          = matchfind.MaxOffset
	leaveAloneMatchLen = 1000
	// demoteCeiling bounds the match lengths eligible for demotion
	// (spec: "m <= 19"); fusion is tried for matches of any length.
	demoteCeiling = 19
)

func varlenExtraBytes(n int) int {
	if n < 255 {
		return 1
	}
	return 1 + n/255
}

func literalVarlen(runLen int) int {
	if runLen < 15 {
		return 0
	}
	return varlenExtraBytes(runLen - 15)
}

func matchVarlen(encLen int) int {
	if encLen < 15 {
		return 0
	}
	return varlenExtraBytes(encLen - 15)
}

// FusedSentinel marks a position consumed by a preceding fused match.
const FusedSentinel = -1

// Run applies the peephole pass to match[0:end-start), the parsed command
// array for a single block, in place. w is the window bytes backing the
// offsets recorded in match (used only to verify fusion byte equality).
// base is the absolute window offset corresponding to match[0].
func Run(w []byte, base int, match []matchfind.Match) {
	n := len(match)
	literalsRun := 0

	p := 0
	for p < n {
		m := match[p]
		if m.Length <= 0 {
			literalsRun++
			p++
			continue
		}

		mLen := int(m.Length)
		if mLen <= demoteCeiling && p+mLen < n {
			if demote(w, base, match, p, mLen, literalsRun) {
				for i := p; i < p+mLen; i++ {
					match[i] = matchfind.Match{}
				}
				literalsRun += mLen
				p += mLen
				continue
			}
		}

		if fuse(w, base, match, p) {
			// Stay at p: the extended match may fuse further.
			continue
		}

		literalsRun = 0
		p += mLen
	}
}

// demote decides whether the match of length m at p should be converted to
// literals per peephole cases A and B.
func demote(w []byte, base int, match []matchfind.Match, p, m, literalsRun int) bool {
	cmdBits := 8 + literalVarlen(literalsRun)*8 + 16 + matchVarlen(m-4)*8

	next := match[p+m]
	if next.Length >= minMatch {
		// Case A: a match also begins at p + m.
		return cmdBits >= 8*m+literalVarlen(literalsRun+m)*8
	}

	// Case B: followed by next_lits literal bytes before the next match or
	// the end of the block.
	nextLits := 0
	for q := p + m; q < len(match) && match[q].Length < minMatch; q++ {
		nextLits++
	}
	if nextLits == 0 {
		return false
	}
	return cmdBits >= 8*m+literalVarlen(literalsRun+nextLits+m)*8-literalVarlen(nextLits)*8
}

// fuse attempts to merge the match at p with the match immediately following
// it, returning true if a fusion occurred (match[p] is rewritten and the
// second command is sentinelled).
func fuse(w []byte, base int, match []matchfind.Match, p int) bool {
	m := match[p]
	if m.Length < 2 {
		return false
	}
	next := p + int(m.Length)
	if next >= len(match) {
		return false
	}
	m2 := match[next]
	if m2.Length < 2 {
		return false
	}

	combined := int(m.Length) + int(m2.Length)
	if combined < leaveAloneMatchLen || combined > maxOffset {
		return false
	}
	if m.Offset < 1 || int(m.Offset) > maxOffset {
		return false
	}
	if m2.Offset < 1 || int(m2.Offset) > maxOffset {
		return false
	}

	// The fused match reuses m's offset for its whole length, so the bytes
	// the second match's span would have referenced must equal the bytes
	// that extending the first match's source by the same span yields.
	absP := base + p
	o := int(m.Offset)
	segStart := absP + int(m.Length)
	srcStart := segStart - o
	if srcStart < 0 || segStart+int(m2.Length) > len(w) || srcStart+int(m2.Length) > len(w) {
		return false
	}
	for i := 0; i < int(m2.Length); i++ {
		if w[segStart+i] != w[srcStart+i] {
			return false
		}
	}

	match[p] = matchfind.Match{Length: int32(combined), Offset: m.Offset}
	match[next] = matchfind.Match{Length: FusedSentinel, Offset: 0}
	return true
}
