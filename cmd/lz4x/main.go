// Command lz4x is the CLI surface for the optimal LZ4 block/frame
// compressor: compress, decompress, compression/decompression benchmarks
// against a classical LZ4-HC-style baseline, and a self-test harness. Exit
// codes: 0 on success, 100 on any error (a single error channel is
// intentional — see DESIGN.md).
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/harriteja/lz4x/compress"
	"github.com/harriteja/lz4x/internal/bench"
	"github.com/harriteja/lz4x/internal/classichc"
	"github.com/harriteja/lz4x/internal/selftest"
)

const exitError = 100

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lz4x", flag.ContinueOnError)

	modeCompress := fs.Bool("z", false, "compress (default)")
	modeDecompress := fs.Bool("d", false, "decompress")
	modeCBench := fs.Bool("cbench", false, "compression benchmark")
	modeDBench := fs.Bool("dbench", false, "decompression benchmark")
	modeTest := fs.Bool("test", false, "run the self-test harness")

	verify := fs.Bool("c", false, "verify by decompressing after compressing")
	b4 := fs.Bool("B4", false, "64KiB blocks")
	b5 := fs.Bool("B5", false, "256KiB blocks")
	b6 := fs.Bool("B6", false, "1MiB blocks")
	b7 := fs.Bool("B7", false, "4MiB blocks (default)")
	dependent := fs.Bool("BD", false, "dependent blocks (default)")
	independent := fs.Bool("BI", false, "independent blocks")
	legacy := fs.Bool("l", false, "legacy-frames format")
	raw := fs.Bool("r", false, "raw-block mode")
	verbose := fs.Bool("v", false, "verbose output")
	favorSpeed := fs.Bool("favor-decSpeed", false, "favor decompression speed over ratio")
	dictPath := fs.String("D", "", "dictionary file")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if env.Bool("LZ4X_FAVOR_SPEED") {
		*favorSpeed = true
	}
	workers := env.Int("LZ4X_WORKERS", 0)

	opts := compress.FrameOptions{
		BlockSizeCode:  pickBlockSizeCode(*b4, *b5, *b6, *b7),
		Independent:    *independent && !*dependent,
		Legacy:         *legacy,
		Raw:            *raw,
		DictionaryPath: *dictPath,
		Options:        compress.Options{FavorSpeed: *favorSpeed},
	}

	switch {
	case *modeTest:
		return runSelfTest(*dictPath, *verbose)
	case *modeCBench:
		return runCompressionBench(fs.Args(), opts, *verbose)
	case *modeDBench:
		return runDecompressionBench(fs.Args(), opts, *verbose)
	case *modeDecompress:
		return runDecompress(fs.Args(), opts, *verbose)
	case *modeCompress:
		return runCompress(fs.Args(), opts, *verify, workers, *verbose)
	default:
		// No mode flag given: compress, matching spec.md §6.4 ("-z compress
		// (default)").
		return runCompress(fs.Args(), opts, *verify, workers, *verbose)
	}
}

func pickBlockSizeCode(b4, b5, b6, b7 bool) compress.BlockSizeCode {
	switch {
	case b4:
		return compress.BlockSize64KB
	case b5:
		return compress.BlockSize256KB
	case b6:
		return compress.BlockSize1MB
	case b7:
		return compress.BlockSize4MB
	default:
		return compress.BlockSize4MB
	}
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compress.ErrSourceRead, err)
	}
	return f, nil
}

func openOutput(args []string) (io.WriteCloser, error) {
	if len(args) < 2 || args[1] == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compress.ErrSinkWrite, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func runCompress(args []string, opts compress.FrameOptions, verify bool, workers int, verbose bool) int {
	in, err := openInput(args)
	if err != nil {
		log.Print(err)
		return exitError
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		log.Printf("%v: %v", compress.ErrSourceRead, err)
		return exitError
	}

	out, err := openOutput(args)
	if err != nil {
		log.Print(err)
		return exitError
	}
	defer out.Close()

	var dst bytes.Buffer
	var writeCloser io.WriteCloser
	var stater compress.Stater

	if opts.Raw {
		if len(data) > opts.BlockSizeCode.Bytes() {
			log.Print(compress.ErrRawTooLarge)
			return exitError
		}
		ctx := compress.NewCtxSize(opts.BlockSizeCode.Bytes())
		defer ctx.Close()
		buf := make([]byte, compress.MaxCompressedSize(len(data)))
		n, ok := ctx.CompressBlock(nil, data, opts.Options, buf)
		if !ok || n >= len(data) {
			log.Print(compress.ErrRawIncompressible)
			return exitError
		}
		dst.Write(buf[:n])
		dst.Write([]byte{0x00, 0x00})
	} else if opts.Independent && workers > 1 {
		pw, err := compress.NewParallelWriter(&dst, opts, workers)
		if err != nil {
			log.Print(err)
			return exitError
		}
		writeCloser = pw
		stater = pw
	} else {
		w, err := compress.NewWriter(&dst, opts)
		if err != nil {
			log.Print(err)
			return exitError
		}
		writeCloser = w
		stater = w
	}

	if writeCloser != nil {
		if _, err := writeCloser.Write(data); err != nil {
			log.Print(err)
			return exitError
		}
		if err := writeCloser.Close(); err != nil {
			log.Print(err)
			return exitError
		}
	}

	if verbose && stater != nil {
		log.Print(stater.State())
	}
	if verbose {
		log.Printf("lz4x: %d -> %d bytes", len(data), dst.Len())
	}

	if verify {
		r, err := compress.NewReader(bytes.NewReader(dst.Bytes()), opts)
		if err != nil {
			log.Printf("%v: %v", compress.ErrInternalCompression, err)
			return exitError
		}
		got, err := io.ReadAll(r)
		if err != nil || !bytes.Equal(got, data) {
			log.Print(compress.ErrInternalCompression)
			return exitError
		}
	}

	if _, err := out.Write(dst.Bytes()); err != nil {
		log.Print(err)
		return exitError
	}
	return 0
}

func runDecompress(args []string, opts compress.FrameOptions, verbose bool) int {
	in, err := openInput(args)
	if err != nil {
		log.Print(err)
		return exitError
	}
	defer in.Close()

	out, err := openOutput(args)
	if err != nil {
		log.Print(err)
		return exitError
	}
	defer out.Close()

	r, err := compress.NewReader(in, opts)
	if err != nil {
		log.Print(err)
		return exitError
	}
	defer r.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		log.Print(err)
		return exitError
	}
	if verbose {
		log.Print(r.State())
		log.Printf("lz4x: decompressed %d bytes", n)
	}
	return 0
}

func runCompressionBench(args []string, opts compress.FrameOptions, verbose bool) int {
	data, err := benchCorpus(args)
	if err != nil {
		log.Print(err)
		return exitError
	}

	report := bench.RunCompression(data, opts.Options, classichc.LevelHigh)
	fmt.Printf("optimal:    %8d -> %8d bytes, %6d commands, %v\n",
		report.Optimal.InputSize, report.Optimal.CompressedSize, report.Optimal.CommandCount, report.Optimal.Elapsed)
	fmt.Printf("classic-hc: %8d -> %8d bytes, %6d commands, %v\n",
		report.Classic.InputSize, report.Classic.CompressedSize, report.Classic.CommandCount, report.Classic.Elapsed)
	return 0
}

func runDecompressionBench(args []string, opts compress.FrameOptions, verbose bool) int {
	data, err := benchCorpus(args)
	if err != nil {
		log.Print(err)
		return exitError
	}

	ctx := compress.NewCtxSize(len(data))
	defer ctx.Close()
	buf := make([]byte, compress.MaxCompressedSize(len(data)))
	n, ok := ctx.CompressBlock(nil, data, opts.Options, buf)
	if !ok {
		log.Print("input incompressible, nothing to benchmark decompression of")
		return exitError
	}

	elapsed, err := bench.RunDecompression(buf[:n], len(data))
	if err != nil {
		log.Print(err)
		return exitError
	}
	fmt.Printf("decompress: %8d bytes in %v\n", len(data), elapsed)
	return 0
}

func benchCorpus(args []string) ([]byte, error) {
	if len(args) > 0 {
		return os.ReadFile(args[0])
	}
	return selftest.NaturalLanguageCorpus(1 << 20), nil
}

func runSelfTest(dictPath string, verbose bool) int {
	report := selftest.Run(dictPath)
	for _, c := range report.Cases {
		if verbose || !c.Passed {
			fmt.Println(c.String())
		}
	}
	fmt.Printf("lz4x self-test: %d passed, %d failed\n", report.Passed, report.Failed)
	if report.Failed > 0 {
		return exitError
	}
	return 0
}
