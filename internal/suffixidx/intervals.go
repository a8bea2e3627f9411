package suffixidx

// An Index turns the suffix array + LCP array of a window into the
// LCP-interval structure the match finder walks. Internal (non-leaf) LCP
// intervals are numbered 0..numIntervals-1 and described by three parallel
// arrays rather than one packed word: parent[id] is the enclosing
// (super-)interval, lcpOf[id] the interval's LCP length, and repr[id] the
// most recent text position whose ascent passed through it, which is also
// its best current match candidate. The parent links are never overwritten.
// posData[p] gives the id of the deepest interval containing position p, so
// a lookup always starts with one posData read followed by repeated parent
// steps.
type Index struct {
	n int

	sa    []int32
	invSA []int32

	// parent[id] is the enclosing interval id, or -1 for the root.
	parent []int32
	// lcpOf[id] is the interval's LCP length, capped at LCPCap.
	lcpOf []int32
	// repr[id] is the most recent text position whose ascent touched this
	// interval, or -1 if none yet (the dynamic half of intervals[id]).
	repr []int32

	// posData[p] is the id of the deepest interval containing position p.
	posData []int32
}

const noInterval = int32(-1)

// Build constructs the LCP-interval index for window w. It computes the
// suffix array and LCP array internally.
func Build(w []byte) *Index {
	sa := BuildSuffixArray(w)
	invSA := InvertSuffixArray(sa)
	lcp := BuildLCP(w, sa)
	return BuildFromArrays(w, sa, invSA, lcp)
}

// BuildFromArrays constructs the index from precomputed suffix/LCP arrays,
// letting a caller reuse them across calls.
func BuildFromArrays(w []byte, sa, invSA, lcp []int32) *Index {
	n := len(w)
	idx := &Index{
		n:       n,
		sa:      sa,
		invSA:   invSA,
		posData: make([]int32, n),
	}
	if n == 0 {
		return idx
	}

	// Stack-based construction of LCP intervals (Abouelhoda/Ohlebusch):
	// scan (SA[i], LCP[i]) left to right, opening a new interval whenever
	// the LCP rises, closing (and linking to its superinterval) whenever it
	// falls, and continuing the current interval on a tie.
	type frame struct {
		lcp int32
		id  int32 // -1 for the always-open virtual root frame
	}
	stack := []frame{{lcp: 0, id: noInterval}}

	idx.parent = make([]int32, 0, n)
	idx.lcpOf = make([]int32, 0, n)
	newInterval := func(lcpVal int32) int32 {
		id := int32(len(idx.parent))
		idx.parent = append(idx.parent, noInterval)
		idx.lcpOf = append(idx.lcpOf, lcpVal)
		return id
	}

	for i := 0; i < n; i++ {
		cur := int32(0)
		if i > 0 {
			cur = lcp[i]
		}

		lastClosed := noInterval
		for len(stack) > 1 && stack[len(stack)-1].lcp > cur {
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if lastClosed != noInterval {
				idx.parent[lastClosed] = closed.id
			}
			lastClosed = closed.id
		}

		top := &stack[len(stack)-1]
		if top.lcp < cur {
			id := newInterval(cur)
			if lastClosed != noInterval {
				idx.parent[lastClosed] = id
			} else {
				// sa[i-1] is the new interval's left boundary and lies in no
				// deeper interval, so this one is now its deepest.
				idx.posData[sa[i-1]] = id
			}
			stack = append(stack, frame{lcp: cur, id: id})
			top = &stack[len(stack)-1]
		} else if lastClosed != noInterval {
			// Closed interval(s) reattach under the current (unchanged) top.
			idx.parent[lastClosed] = top.id
		}

		idx.posData[sa[i]] = top.id
	}

	// Close any intervals still open at the end.
	for len(stack) > 1 {
		closed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		top := stack[len(stack)-1]
		idx.parent[closed.id] = top.id
	}

	idx.repr = make([]int32, len(idx.parent))
	for i := range idx.repr {
		idx.repr[i] = -1
	}

	return idx
}

// Reset clears the dynamic (repr) half of the index so the same window can
// be scanned again from its first position. The tree shape stays that of
// the window the index was built over; a different window needs a fresh
// Build/BuildFromArrays.
func (idx *Index) Reset() {
	for i := range idx.repr {
		idx.repr[i] = -1
	}
}

// Insert marks position p as available to future Candidate lookups: every
// interval on the path from p's deepest containing interval to the root has
// its representative position refreshed to p. This is the "ascend,
// overwriting intervals[.] slots to p" step; unlike an amortised
// path-compressing ascent, this implementation refreshes the full chain on
// every insert so that a window-expired representative at one interval
// never hides a still-valid, more specific one (see DESIGN.md).
func (idx *Index) Insert(p int) {
	if idx.n == 0 {
		return
	}
	id := idx.posData[p]
	for id != noInterval {
		idx.repr[id] = int32(p)
		id = idx.parent[id]
	}
}

// Candidate returns the longest admissible match for position p: the
// deepest interval containing p whose representative position lies within
// [p-maxOffset, p-1] and whose LCP is at least minLen. Because intervals
// closer to the leaf always have greater-or-equal LCP than their ancestors,
// the first admissible interval found while climbing from p's deepest
// interval toward the root is, by construction, both the longest available
// match and (since repr always holds the most recently inserted, hence
// nearest, position in its subtree) the smallest-offset match of that
// length.
func (idx *Index) Candidate(p, minLen, maxOffset int) (length, offset int) {
	if idx.n == 0 {
		return 0, 0
	}
	id := idx.posData[p]
	for id != noInterval {
		l := int(idx.lcpOf[id])
		if l < minLen {
			return 0, 0
		}
		r := int(idx.repr[id])
		if r >= 0 {
			off := p - r
			if off >= 1 && off <= maxOffset {
				return l, off
			}
		}
		id = idx.parent[id]
	}
	return 0, 0
}

// Len returns the window length the index was built over.
func (idx *Index) Len() int { return idx.n }

// SA exposes the built suffix array (useful for tests and diagnostics).
func (idx *Index) SA() []int32 { return idx.sa }

// InvSA exposes the inverse suffix array.
func (idx *Index) InvSA() []int32 { return idx.invSA }
