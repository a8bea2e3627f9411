// Package suffixidx builds the suffix-array-derived LCP-interval index that
// the match finder walks to enumerate candidate matches per position.
package suffixidx

import "sort"

// BuildSuffixArray computes the suffix array of w by prefix doubling: ranks
// are refined round by round, each round sorting by the pair (rank[i],
// rank[i+k]) until all suffixes have distinct rank. Positions are compared
// by their already-known rank rather than by re-scanning bytes, so the
// whole construction is O(N log^2 N).
func BuildSuffixArray(w []byte) []int32 {
	n := len(w)
	sa := make([]int32, n)
	if n == 0 {
		return sa
	}

	rank := make([]int32, n)
	next := make([]int32, n)
	for i := 0; i < n; i++ {
		sa[i] = int32(i)
		rank[i] = int32(w[i])
	}

	rankAt := func(i int32) int32 {
		if int(i) >= n {
			return -1
		}
		return rank[i]
	}

	for k := 1; ; k *= 2 {
		sort.Slice(sa, func(a, b int) bool {
			ia, ib := sa[a], sa[b]
			if rank[ia] != rank[ib] {
				return rank[ia] < rank[ib]
			}
			return rankAt(ia+int32(k)) < rankAt(ib+int32(k))
		})

		next[sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			next[cur] = next[prev]
			sameHead := rank[prev] == rank[cur]
			sameTail := rankAt(prev+int32(k)) == rankAt(cur+int32(k))
			if !sameHead || !sameTail {
				next[cur]++
			}
		}
		copy(rank, next)

		if int(rank[sa[n-1]]) == n-1 {
			break
		}
	}

	return sa
}

// InvertSuffixArray returns invSA such that invSA[sa[i]] == i: the rank of
// each text position in suffix order.
func InvertSuffixArray(sa []int32) []int32 {
	inv := make([]int32, len(sa))
	for i, p := range sa {
		inv[p] = int32(i)
	}
	return inv
}
