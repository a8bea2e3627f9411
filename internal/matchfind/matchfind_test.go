package matchfind

import (
	"testing"

	"github.com/harriteja/lz4x/internal/suffixidx"
)

func TestFindAllFindsRepeat(t *testing.T) {
	w := []byte("abcdabcdabcdabcd")
	idx := suffixidx.Build(w)
	f := New(idx)

	matches := make([]Match, len(w))
	f.FindAll(0, len(w), matches)

	// Position 4 repeats position 0 at offset 4.
	m := matches[4]
	if m.Offset != 4 {
		t.Fatalf("matches[4].Offset = %d, want 4", m.Offset)
	}
	if m.Length < MinMatch {
		t.Fatalf("matches[4].Length = %d, want >= %d", m.Length, MinMatch)
	}
}

func TestFindAllForcesEndZones(t *testing.T) {
	w := make([]byte, 64)
	for i := range w {
		w[i] = byte(i % 5)
	}
	idx := suffixidx.Build(w)
	f := New(idx)

	matches := make([]Match, len(w))
	f.FindAll(0, len(w), matches)

	end := len(w)
	for p := end - LastMatchOffset + 1; p < end; p++ {
		if m := matches[p]; m.Length != 0 || m.Offset != 0 {
			t.Fatalf("position %d within LastMatchOffset of end has a match: %+v", p, m)
		}
	}
	for p := 0; p < end; p++ {
		if m := matches[p]; m.Length != 0 {
			if int(m.Length)+p > end-LastLiterals {
				t.Fatalf("match at %d of length %d crosses into the last-literals zone", p, m.Length)
			}
		}
	}
}

func TestSkipMakesHistoryAvailableWithoutScoringIt(t *testing.T) {
	// 32 bytes, so position 8 lies outside the LastMatchOffset end zone.
	w := []byte("abcdabcdabcdabcdabcdabcdabcdabcd")
	idx := suffixidx.Build(w)
	f := New(idx)

	// Treat [0, 8) as history: it participates in the index but is never
	// scored, matching the history-prefix usage described for Skip.
	f.Skip(0, 8)

	matches := make([]Match, len(w)-8)
	f.FindAll(8, len(w), matches)

	// Position 8 ("abcd" repeating) should still find the offset-4 match
	// that was planted purely by Skip inserting positions 0..7.
	m := matches[0]
	if m.Offset != 4 {
		t.Fatalf("matches[0].Offset = %d, want 4", m.Offset)
	}
}
