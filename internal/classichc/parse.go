package classichc

// Command is one emitted literal-run/match pair in a classical greedy/lazy
// parse, sized the same way spec's block emitter would size it.
type Command struct {
	LiteralRun int
	MatchLen   int // 0 for the final, match-less command
	Offset     int
}

// Parse runs the greedy/lazy hash-chain parse over w and returns the
// resulting command sequence.
func Parse(w []byte, level Level) []Command {
	hc := NewMatcher(level)
	hc.Reset(w)

	var commands []Command
	literalRun := 0
	pos := 0
	n := len(w)

	for pos < n {
		// LZ4 end-of-block rules: no match starts within the last 12 bytes,
		// and the final 5 bytes are always literals.
		if n-pos < 12 {
			literalRun += n - pos
			pos = n
			break
		}
		hc.pos = pos
		offset, length := hc.FindBestMatch()
		if length < minMatch {
			literalRun++
			pos++
			continue
		}

		offset, length, advance := hc.LazyMatch(offset, length)
		if advance == 2 {
			// Deferred: emit the skipped byte as a literal and retry at
			// the next position, where LazyMatch found the better match.
			literalRun++
			pos++
			continue
		}

		if length > n-5-pos {
			length = n - 5 - pos
		}
		if length > maxMatch {
			length = maxMatch
		}
		commands = append(commands, Command{LiteralRun: literalRun, MatchLen: length, Offset: offset})
		literalRun = 0
		hc.pos = pos
		hc.UpdateTables(pos+1, pos+length)
		pos += length
	}

	commands = append(commands, Command{LiteralRun: literalRun, MatchLen: 0})
	return commands
}

// UpdateTables inserts every position in [start, end) into the hash chain,
// used to keep the matcher's tables current after consuming a match body
// (FindBestMatch only inserts the position it was called at).
func (hc *Matcher) UpdateTables(start, end int) {
	for pos := start; pos < end && pos < hc.end; pos++ {
		hc.InsertHash(pos)
	}
}

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

// EncodedSize returns the number of bytes the command sequence would occupy
// in the LZ4 block wire format.
func EncodedSize(commands []Command) int {
	total := 0
	for _, c := range commands {
		total += 1 // token
		total += literalVarlen(c.LiteralRun)
		total += c.LiteralRun
		if c.MatchLen > 0 {
			total += 2 // offset
			total += matchVarlen(c.MatchLen - 4)
		}
	}
	return total
}
