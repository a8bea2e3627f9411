package peephole

import (
	"testing"

	"github.com/harriteja/lz4x/internal/matchfind"
)

func TestRunDemotesMatchAtVarlenBoundary(t *testing.T) {
	// 16 literal bytes (already past the varlen-15 boundary) followed by
	// a minimal 4-byte match, followed by 300 more literal bytes: merging
	// the match into one big trailing literal run crosses no additional
	// varlen boundary the 300-byte run wasn't already going to cross, so
	// demoting it is a pure win (case B).
	n := 16 + 4 + 300
	w := make([]byte, n)
	match := make([]matchfind.Match, n)
	match[16] = matchfind.Match{Length: 4, Offset: 4}

	Run(w, 0, match)

	for i := 16; i < 20; i++ {
		if match[i].Length != 0 {
			t.Fatalf("expected demotion to literals at %d, got %+v", i, match[i])
		}
	}
}

func TestRunFusesAdjacentLongMatches(t *testing.T) {
	w := make([]byte, 2100)
	for i := range w {
		w[i] = byte(i % 7)
	}
	match := make([]matchfind.Match, len(w))
	// Two adjacent matches referencing the same offset, combined length
	// exceeding leaveAloneMatchLen, byte-compatible with fusion.
	match[1000] = matchfind.Match{Length: 600, Offset: 7}
	match[1600] = matchfind.Match{Length: 500, Offset: 7}

	Run(w, 0, match)

	if match[1000].Length != 1100 {
		t.Fatalf("match[1000].Length = %d, want 1100 (fused)", match[1000].Length)
	}
	if match[1000].Offset != 7 {
		t.Fatalf("match[1000].Offset = %d, want 7", match[1000].Offset)
	}
	if match[1600].Length != FusedSentinel {
		t.Fatalf("match[1600].Length = %d, want sentinel %d", match[1600].Length, FusedSentinel)
	}
}

func TestRunIdempotent(t *testing.T) {
	w := make([]byte, 2100)
	for i := range w {
		w[i] = byte(i % 7)
	}
	match := make([]matchfind.Match, len(w))
	match[1000] = matchfind.Match{Length: 600, Offset: 7}
	match[1600] = matchfind.Match{Length: 500, Offset: 7}

	Run(w, 0, match)
	first := make([]matchfind.Match, len(match))
	copy(first, match)

	Run(w, 0, match)
	for i := range match {
		if match[i] != first[i] {
			t.Fatalf("peephole not idempotent at %d: %+v != %+v", i, match[i], first[i])
		}
	}
}
