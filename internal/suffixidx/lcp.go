package suffixidx

// LCPCap is the maximum LCP value the interval index can represent, fixed
// by the 15-bit field width described in the data model (values above this
// are still reachable as matches, but only through peephole fusion of two
// shorter matches).
const LCPCap = (1 << 14) - 1

// BuildLCP computes, for every suffix-array rank i, the length of the
// longest common prefix between SA[i-1] and SA[i] (lcp[0] is always 0). It
// uses the Phi method: the permuted LCP (PLCP, indexed by text position) is
// computed in one left-to-right pass over the text with an amortised
// extend-by-one counter, then rotated into suffix-array order.
func BuildLCP(w []byte, sa []int32) []int32 {
	n := len(w)
	lcp := make([]int32, n)
	if n == 0 {
		return lcp
	}

	phi := make([]int32, n)
	phi[sa[0]] = -1
	for i := 1; i < n; i++ {
		phi[sa[i]] = sa[i-1]
	}

	plcp := make([]int32, n)
	l := 0
	for i := 0; i < n; i++ {
		j := int(phi[i])
		if j < 0 {
			plcp[i] = 0
			l = 0
			continue
		}
		for i+l < n && j+l < n && w[i+l] == w[j+l] {
			l++
		}
		plcp[i] = int32(l)
		if l > 0 {
			l--
		}
	}

	for i := 1; i < n; i++ {
		v := plcp[sa[i]]
		if v > LCPCap {
			v = LCPCap
		}
		lcp[i] = v
	}

	return lcp
}
