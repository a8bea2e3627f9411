package compress

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, opts FrameOptions, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(&buf, opts)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return got
}

func TestModernFrameRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("hello, lz4 frame. ", 1000))
	got := roundTrip(t, FrameOptions{BlockSizeCode: BlockSize64KB}, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: len(got)=%d, len(want)=%d", len(got), len(data))
	}
}

func TestModernFrameIndependentBlocksRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("independent block content. ", 2000))
	got := roundTrip(t, FrameOptions{BlockSizeCode: BlockSize64KB, Independent: true}, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestLegacyFrameRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("legacy frame payload. ", 3000))
	got := roundTrip(t, FrameOptions{Legacy: true}, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRawBlockModeRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("raw block payload. ", 500))
	got := roundTrip(t, FrameOptions{Raw: true, BlockSizeCode: BlockSize4MB}, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestModernFrameHeaderChecksum(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FrameOptions{BlockSizeCode: BlockSize64KB})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	header := buf.Bytes()[:7]
	if !bytes.Equal(header[:4], magicModern[:]) {
		t.Fatalf("unexpected magic: %x", header[:4])
	}

	// Corrupting the trailing checksum byte must be detected on read.
	corrupted := append([]byte(nil), buf.Bytes()...)
	corrupted[6] ^= 0xFF
	if _, err := NewReader(bytes.NewReader(corrupted), FrameOptions{}); err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r, _ := NewReader(bytes.NewReader(corrupted), FrameOptions{})
	if _, err := io.ReadAll(r); err != ErrChecksum {
		t.Fatalf("got err %v, want ErrChecksum", err)
	}
}

func TestWriterDowngradesBlockSizeCodeInHeader(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 80*1024)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, FrameOptions{BlockSizeCode: BlockSize4MB})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	header := buf.Bytes()[:7]
	gotCode := BlockSizeCode(header[5] >> 4)
	wantCode := EffectiveBlockSizeCode(BlockSize4MB, len(data))
	if gotCode != wantCode {
		t.Fatalf("header block-size code = %d, want %d (configured code was never downgraded)", gotCode, wantCode)
	}
	if gotCode == BlockSize4MB {
		t.Fatalf("expected an 80KiB input to downgrade below the configured 4MiB code")
	}

	r, err := NewReader(&buf, FrameOptions{BlockSizeCode: BlockSize4MB})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch after downgrade")
	}
}

func TestParallelWriterDowngradesBlockSizeCodeInHeader(t *testing.T) {
	data := bytes.Repeat([]byte("y"), 80*1024)

	var buf bytes.Buffer
	pw, err := NewParallelWriter(&buf, FrameOptions{BlockSizeCode: BlockSize4MB, Independent: true}, 2)
	if err != nil {
		t.Fatalf("NewParallelWriter: %v", err)
	}
	if _, err := pw.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	header := buf.Bytes()[:7]
	gotCode := BlockSizeCode(header[5] >> 4)
	if gotCode == BlockSize4MB {
		t.Fatalf("expected an 80KiB input to downgrade below the configured 4MiB code")
	}
}

func TestRawAndLegacyAreMutuallyExclusive(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewWriter(&buf, FrameOptions{Raw: true, Legacy: true})
	if err == nil {
		t.Fatalf("expected an error combining raw-block mode with legacy framing")
	}
}

func TestDictionarySeedsFirstBlock(t *testing.T) {
	dir := t.TempDir()
	dictPath := dir + "/dict.bin"
	dictContents := []byte(strings.Repeat("shared vocabulary ", 100))
	if err := writeFile(dictPath, dictContents); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	data := []byte("shared vocabulary shared vocabulary")
	opts := FrameOptions{BlockSizeCode: BlockSize64KB, DictionaryPath: dictPath}
	got := roundTrip(t, opts, data)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch with dictionary seeding")
	}
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
