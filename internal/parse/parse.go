// Package parse implements the reverse-order dynamic-programming optimal
// parser: given a per-position match array, it rewrites that array into the
// bit-minimal command sequence under the LZ4 token/varlen cost model, tying
// on command count.
package parse

import "github.com/harriteja/lz4x/internal/matchfind"

// Cost-model constants shared with the block emitter.
const (
	MinMatch           = matchfind.MinMatch
	LastLiterals       = matchfind.LastLiterals
	LiteralRunLen      = 15
	MatchRunLen        = 15
	ModeswitchPenalty  = 1
	LeaveAloneMatchLen = 1000
)

// Weight selects the tie-break bias between ratio and decode speed.
type Weight int32

const (
	FavorRatio Weight = 1
	FavorSpeed Weight = 5
)

// Options configures a single parse pass.
type Options struct {
	Weight Weight
	// Truncate148 enables the favor-speed fast-path truncation of chosen
	// match lengths strictly within (14, 28] down to 14.
	Truncate148 bool
}

// varlenExtraBytes returns the number of extra varlen bytes needed to encode
// n once n has reached the threshold that triggers varlen encoding at all
// (the caller is responsible for checking n >= threshold).
func varlenExtraBytes(n int) int {
	if n < 255 {
		return 1
	}
	return 1 + n/255
}

func literalVarlen(runLen int) int {
	if runLen < LiteralRunLen {
		return 0
	}
	return varlenExtraBytes(runLen - LiteralRunLen)
}

func matchVarlen(encLen int) int {
	if encLen < MatchRunLen {
		return 0
	}
	return varlenExtraBytes(encLen - MatchRunLen)
}

// Run executes the reverse DP over match[0:end-start), the match array for
// the half-open range [start, end) of the underlying window, and rewrites it
// in place to hold the chosen commanding: positions with Length >=
// MinMatch are match starts (possibly trimmed from the input candidate);
// all other positions are demoted to Length=0 (literal).
func Run(match []matchfind.Match, opts Options) {
	n := len(match)
	if n == 0 {
		return
	}

	cost := make([]int32, n)
	score := make([]int32, n)
	// chosen[p] holds the trimmed match length chosen at p, or 0 for a
	// literal; it is applied back onto match[] once the sweep completes so
	// the original candidate lengths remain available to later steps of
	// the same sweep (the DP only ever looks forward, at p+k for k>0).
	chosen := make([]int32, n)

	weight := int32(opts.Weight)

	cost[n-1] = 8
	score[n-1] = 0
	chosen[n-1] = 0

	// literalRunAt[p] is the length of the contiguous literal run that
	// would begin at p if p itself is a literal, computed alongside the
	// sweep since it only depends on positions > p already decided.
	literalRunAt := make([]int32, n+1)
	literalRunAt[n-1] = 1

	for p := n - 2; p >= 0; p-- {
		bestCost := int32(-1)
		bestScore := int32(-1)
		bestChosen := int32(0)

		// Candidate: take a literal at p.
		litRun := literalRunAt[p+1] + 1
		c := int32(8) + cost[p+1]
		if litRun >= LiteralRunLen && (litRun-LiteralRunLen)%255 == 0 {
			c += 8
		}
		if chosen[p+1] > 0 {
			c += ModeswitchPenalty
		}
		s := score[p+1] + 1
		bestCost, bestScore, bestChosen = c, s, 0

		m := match[p]
		if m.Length >= MinMatch {
			maxLen := int(m.Length)
			if p+maxLen > n-LastLiterals {
				maxLen = n - LastLiterals - p
			}
			if maxLen >= MinMatch {
				// tryLen evaluates committing a match of trial length k
				// starting at p. In favor-speed mode a trial strictly
				// within (14, 28] is evaluated as if only the first 14
				// bytes were taken: the decoder's fast-path length
				// threshold is preserved, and the remaining bytes of the
				// same candidate are left for the DP at p+14 to explain
				// (it already knows the optimal continuation there).
				tryLen := func(k int) {
					commit := k
					if opts.Truncate148 && commit > 14 && commit <= 28 {
						commit = 14
					}
					encLen := commit - 4
					c := int32(8+16) + int32(matchVarlen(encLen))*8 + cost[p+commit]
					if chosen[p+commit] > 0 {
						c += ModeswitchPenalty
					}
					s := score[p+commit] + weight
					if c < bestCost || (c == bestCost && s < bestScore) {
						bestCost, bestScore, bestChosen = c, s, int32(commit)
					}
				}

				if maxLen >= LeaveAloneMatchLen {
					tryLen(maxLen)
				} else {
					for k := MinMatch; k <= maxLen; k++ {
						tryLen(k)
					}
				}
			}
		}

		cost[p] = bestCost
		score[p] = bestScore
		chosen[p] = bestChosen

		if bestChosen == 0 {
			literalRunAt[p] = litRun
		} else {
			literalRunAt[p] = 0
		}
	}

	for p := 0; p < n; p++ {
		k := chosen[p]
		if k == 0 {
			match[p] = matchfind.Match{}
			continue
		}
		match[p] = matchfind.Match{Length: k, Offset: match[p].Offset}
	}
}
