// Package selftest runs the concrete scenarios spec.md §8 enumerates
// (empty input, a single byte, a short repeating pattern, a long zero run,
// a long alternating-byte run, and a natural-language fragment) across
// every block-size code and flag combination, asserting the round-trip and
// command-count properties those scenarios exist to check. It backs the
// CLI's -test command.
package selftest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/harriteja/lz4x/compress"
)

// Scenario is one named input the harness exercises.
type Scenario struct {
	Name string
	Data []byte
}

// Scenarios returns the fixed set of scenarios spec.md §8 enumerates.
func Scenarios() []Scenario {
	return []Scenario{
		{"empty", nil},
		{"single-byte", []byte("a")},
		{"short-repeat", []byte("abcabcabcabc")},
		{"long-zero-run", bytes.Repeat([]byte{0x00}, 65536)},
		{"alternating-1MiB", alternating(1 << 20)},
		{"natural-language-100000", NaturalLanguageCorpus(100000)},
	}
}

func alternating(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		if i%2 == 0 {
			data[i] = 0xAA
		} else {
			data[i] = 0x55
		}
	}
	return data
}

var blockSizeCodes = []compress.BlockSizeCode{
	compress.BlockSize64KB,
	compress.BlockSize256KB,
	compress.BlockSize1MB,
	compress.BlockSize4MB,
}

// CaseResult is the outcome of one scenario under one flag combination.
type CaseResult struct {
	Scenario    string
	BlockCode   compress.BlockSizeCode
	FavorSpeed  bool
	Independent bool
	Legacy      bool
	Dictionary  bool

	Passed        bool
	Err           error
	Fingerprint   uint64
	RatioCommands int
	SpeedCommands int
}

func (c CaseResult) String() string {
	mode := "ratio"
	if c.FavorSpeed {
		mode = "speed"
	}
	ind := "dependent"
	if c.Independent {
		ind = "independent"
	}
	status := "ok"
	if !c.Passed {
		status = fmt.Sprintf("FAIL: %v", c.Err)
	}
	return fmt.Sprintf("%-26s block=%d %-5s %-11s legacy=%-5t dict=%-5t -> %s",
		c.Scenario, c.BlockCode, mode, ind, c.Legacy, c.Dictionary, status)
}

// Report is the full self-test outcome.
type Report struct {
	Cases  []CaseResult
	Passed int
	Failed int
}

// Run executes every scenario across every flag combination (block-size
// code 4-7, ratio/speed, dependent/independent, with and without a
// dictionary), plus the legacy-frames format, and returns the aggregate
// report. dictionaryPath, if non-empty, is used for the with-dictionary
// cases; if empty those cases are skipped.
func Run(dictionaryPath string) Report {
	var report Report

	for _, sc := range Scenarios() {
		for _, code := range blockSizeCodes {
			for _, favorSpeed := range []bool{false, true} {
				for _, independent := range []bool{false, true} {
					dictChoices := []bool{false}
					if dictionaryPath != "" {
						dictChoices = append(dictChoices, true)
					}
					for _, withDict := range dictChoices {
						opts := compress.FrameOptions{
							BlockSizeCode: code,
							Independent:   independent,
							Options:       compress.Options{FavorSpeed: favorSpeed},
						}
						if withDict {
							opts.DictionaryPath = dictionaryPath
						}
						report.add(runCase(sc, opts))
					}
				}
			}
		}

		// Legacy-frames format: implicit 8MiB independent blocks, no
		// per-case block-size/independence axis to vary.
		report.add(runCase(sc, compress.FrameOptions{Legacy: true}))
	}

	// Natural-language scenario: favor-speed must strictly reduce command
	// count versus favor-ratio while both round-trip identically.
	report.add(checkSpeedReducesCommands())

	return report
}

func (r *Report) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if c.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
}

func runCase(sc Scenario, opts compress.FrameOptions) CaseResult {
	res := CaseResult{
		Scenario:    sc.Name,
		BlockCode:   opts.BlockSizeCode,
		FavorSpeed:  opts.FavorSpeed,
		Independent: opts.Independent,
		Legacy:      opts.Legacy,
		Dictionary:  opts.DictionaryPath != "",
	}

	var buf bytes.Buffer
	w, err := compress.NewWriter(&buf, opts)
	if err != nil {
		res.Err = err
		return res
	}
	if _, err := w.Write(sc.Data); err != nil {
		res.Err = fmt.Errorf("write: %w", err)
		return res
	}
	if err := w.Close(); err != nil {
		res.Err = fmt.Errorf("close: %w", err)
		return res
	}

	res.Fingerprint = xxhash.Sum64(buf.Bytes())

	r, err := compress.NewReader(&buf, opts)
	if err != nil {
		res.Err = fmt.Errorf("new reader: %w", err)
		return res
	}
	got, err := readAll(r)
	if err != nil {
		res.Err = fmt.Errorf("read: %w", err)
		return res
	}
	if !bytes.Equal(got, sc.Data) {
		res.Err = fmt.Errorf("round-trip mismatch: got %d bytes, want %d", len(got), len(sc.Data))
		return res
	}

	res.Passed = true
	return res
}

func readAll(r *compress.Reader) ([]byte, error) {
	var out bytes.Buffer
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			if isEOF(err) {
				return out.Bytes(), nil
			}
			return nil, err
		}
	}
}

func isEOF(err error) bool {
	return err != nil && strings.Contains(err.Error(), "EOF")
}

// checkSpeedReducesCommands verifies that, on the natural-language
// scenario, favor-speed strictly reduces emitted command count versus
// favor-ratio while both decode to the same bytes.
func checkSpeedReducesCommands() CaseResult {
	res := CaseResult{Scenario: "natural-language-speed-vs-ratio", BlockCode: compress.BlockSize4MB}
	data := NaturalLanguageCorpus(100000)

	ctx := compress.NewCtxSize(len(data))
	defer ctx.Close()
	out := make([]byte, compress.MaxCompressedSize(len(data)))

	nRatio, ok := ctx.CompressBlock(nil, data, compress.Options{FavorSpeed: false}, out)
	if !ok {
		res.Err = fmt.Errorf("favor-ratio: incompressible")
		return res
	}
	ratioCommands := countCommands(out[:nRatio])
	ratioDecoded, err := compress.DecompressBlock(out[:nRatio], nil, len(data))
	if err != nil || !bytes.Equal(ratioDecoded, data) {
		res.Err = fmt.Errorf("favor-ratio round-trip failed: %v", err)
		return res
	}

	outSpeed := make([]byte, compress.MaxCompressedSize(len(data)))
	nSpeed, ok := ctx.CompressBlock(nil, data, compress.Options{FavorSpeed: true}, outSpeed)
	if !ok {
		res.Err = fmt.Errorf("favor-speed: incompressible")
		return res
	}
	speedCommands := countCommands(outSpeed[:nSpeed])
	speedDecoded, err := compress.DecompressBlock(outSpeed[:nSpeed], nil, len(data))
	if err != nil || !bytes.Equal(speedDecoded, data) {
		res.Err = fmt.Errorf("favor-speed round-trip failed: %v", err)
		return res
	}

	res.RatioCommands = ratioCommands
	res.SpeedCommands = speedCommands

	if speedCommands >= ratioCommands {
		res.Err = fmt.Errorf("favor-speed command count %d did not strictly improve on favor-ratio %d", speedCommands, ratioCommands)
		return res
	}

	res.Passed = true
	return res
}

func countCommands(block []byte) int {
	count := 0
	pos := 0
	for pos < len(block) {
		token := block[pos]
		pos++
		count++

		litLen := int(token >> 4)
		if litLen == 15 {
			for pos < len(block) {
				b := block[pos]
				pos++
				litLen += int(b)
				if b != 255 {
					break
				}
			}
		}
		pos += litLen
		if pos >= len(block) {
			break
		}
		pos += 2

		matchLen := int(token & 0x0F)
		if matchLen == 15 {
			for pos < len(block) {
				b := block[pos]
				pos++
				matchLen += int(b)
				if b != 255 {
					break
				}
			}
		}
	}
	return count
}
