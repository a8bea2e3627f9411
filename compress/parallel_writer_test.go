package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewParallelWriterRequiresIndependent(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewParallelWriter(&buf, FrameOptions{BlockSizeCode: BlockSize64KB}, 2)
	if err != ErrParallelRequiresIndependent {
		t.Fatalf("err = %v, want ErrParallelRequiresIndependent", err)
	}
}

func TestNewParallelWriterRejectsRaw(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewParallelWriter(&buf, FrameOptions{BlockSizeCode: BlockSize64KB, Independent: true, Raw: true}, 2)
	if err == nil {
		t.Fatal("expected error for raw-block parallel writer")
	}
}

func TestParallelWriterMatchesSequentialWriter(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20000))
	opts := FrameOptions{BlockSizeCode: BlockSize64KB, Independent: true}

	var seq bytes.Buffer
	sw, err := NewWriter(&seq, opts)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := sw.Write(data); err != nil {
		t.Fatalf("sequential Write: %v", err)
	}
	if err := sw.Close(); err != nil {
		t.Fatalf("sequential Close: %v", err)
	}

	var par bytes.Buffer
	pw, err := NewParallelWriter(&par, opts, 4)
	if err != nil {
		t.Fatalf("NewParallelWriter: %v", err)
	}
	if _, err := pw.Write(data); err != nil {
		t.Fatalf("parallel Write: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("parallel Close: %v", err)
	}

	if !bytes.Equal(seq.Bytes(), par.Bytes()) {
		t.Fatalf("parallel output (%d bytes) differs from sequential output (%d bytes)", par.Len(), seq.Len())
	}

	r, err := NewReader(&par, opts)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestParallelWriterNumWorkers(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewParallelWriter(&buf, FrameOptions{BlockSizeCode: BlockSize64KB, Independent: true}, 3)
	if err != nil {
		t.Fatalf("NewParallelWriter: %v", err)
	}
	if pw.NumWorkers() != 3 {
		t.Errorf("NumWorkers() = %d, want 3", pw.NumWorkers())
	}
}
