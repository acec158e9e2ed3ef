// Package main provides the hanzipack CLI.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hanzi-ml/hanzipack/internal/config"
	"github.com/hanzi-ml/hanzipack/internal/pipeline"
	"github.com/hanzi-ml/hanzipack/internal/serialization"
	"github.com/hanzi-ml/hanzipack/internal/tensor"
	"github.com/hanzi-ml/hanzipack/internal/textstat"
)

const version = "v0.1.0"

// verifyTolerance is the absolute tolerance for the verify command: the
// error budget of half-precision narrowing at typical weight magnitudes.
const verifyTolerance = 1e-2

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "stats":
		err = runStats(args)
	case "verify":
		err = runVerify(args)
	case "version":
		fmt.Printf("hanzipack %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "hanzipack %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("hanzipack - pack model weights into printable text")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  encode <archive> <out.txt>    Encode a weight archive to text")
	fmt.Println("  decode <in.txt> <archive>     Decode text back to a weight archive")
	fmt.Println("  stats <in.txt>                Report symbol/byte/token cost of an artifact")
	fmt.Println("  verify <archive> <in.txt>     Decode and compare against the archive")
	fmt.Println("  version                       Show version")
	fmt.Println("")
	fmt.Println("Flags (per command):")
	fmt.Println("  -config <file>                YAML config (compression level, token encoding)")
}

// loadConfig parses a -config flag from args and returns the effective
// configuration plus the remaining positional arguments.
func loadConfig(name string, args []string) (config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}

	if *configPath == "" {
		return config.Default(), fs.Args(), nil
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}

func runEncode(args []string) error {
	cfg, rest, err := loadConfig("encode", args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return fmt.Errorf("usage: hanzipack encode [-config file] <archive> <out.txt>")
	}
	archivePath, outputPath := rest[0], rest[1]

	fmt.Println("Loading archive and reducing to float16...")
	stateDict, _, err := serialization.LoadArchive(archivePath)
	if err != nil {
		return err
	}

	opts := pipeline.Options{CompressionLevel: cfg.Compression.Level}
	text, err := pipeline.Encode(stateDict, opts)
	if err != nil {
		return err
	}

	var rawSize int64
	for _, raw := range stateDict {
		rawSize += int64(raw.ByteSize())
	}
	fmt.Printf("Raw size (bytes): %d\n", rawSize)
	fmt.Printf("Encoded length (symbols): %d\n", len([]rune(text)))

	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write text artifact: %w", err)
	}
	fmt.Printf("Saved encoded model to %s\n", outputPath)
	return nil
}

func runDecode(args []string) error {
	_, rest, err := loadConfig("decode", args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return fmt.Errorf("usage: hanzipack decode [-config file] <in.txt> <archive>")
	}
	textPath, archivePath := rest[0], rest[1]

	fmt.Println("Decoding from base8192 and decompressing...")
	start := time.Now()
	stateDict, header, err := pipeline.DecodeModelFile(textPath)
	if err != nil {
		return err
	}
	fmt.Printf("Decode time: %.3f seconds\n", time.Since(start).Seconds())
	fmt.Printf("Tensors: %d\n", len(stateDict))

	if err := serialization.SaveArchive(archivePath, stateDict, header.Metadata); err != nil {
		return err
	}
	fmt.Printf("Saved weight archive to %s\n", archivePath)
	return nil
}

func runStats(args []string) error {
	cfg, rest, err := loadConfig("stats", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: hanzipack stats [-config file] <in.txt>")
	}

	//nolint:gosec // G304: File path comes from user input, which is expected here
	data, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	text := string(data)

	est, err := textstat.NewEstimator(cfg.Tokens.Encoding)
	if err != nil {
		return err
	}

	stats := est.Measure(text)
	fmt.Printf("Symbols:       %d\n", stats.Symbols)
	fmt.Printf("UTF-8 bytes:   %d\n", stats.Bytes)
	fmt.Printf("Tokens (%s): %d\n", est.Name(), stats.Tokens)
	if stats.Symbols > 0 {
		// 13 payload bits per symbol.
		payload := stats.Symbols * 13 / 8
		fmt.Printf("Payload bytes: %d\n", payload)
		fmt.Printf("Expansion:     %.2fx\n", float64(stats.Bytes)/float64(payload))
	}
	return nil
}

func runVerify(args []string) error {
	_, rest, err := loadConfig("verify", args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return fmt.Errorf("usage: hanzipack verify [-config file] <archive> <in.txt>")
	}
	archivePath, textPath := rest[0], rest[1]

	original, _, err := serialization.LoadArchive(archivePath)
	if err != nil {
		return err
	}
	reduced, err := pipeline.ReduceToHalf(original)
	if err != nil {
		return err
	}

	decoded, _, err := pipeline.DecodeModelFile(textPath)
	if err != nil {
		return err
	}

	mismatches := 0
	for name, want := range reduced {
		got, ok := decoded[name]
		if !ok {
			fmt.Printf("%s: MISSING\n", name)
			mismatches++
			continue
		}
		if tensorsClose(want, got, verifyTolerance) {
			fmt.Printf("%s: OK\n", name)
		} else {
			fmt.Printf("%s: MISMATCH\n", name)
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d tensor(s) did not match", mismatches)
	}
	return nil
}

// tensorsClose compares two tensors: float kinds element-wise within atol,
// everything else byte-identical.
func tensorsClose(a, b *tensor.RawTensor, atol float64) bool {
	if a.DType() != b.DType() || !a.Shape().Equal(b.Shape()) {
		return false
	}
	if !a.DType().IsFloat() {
		return string(a.Data()) == string(b.Data())
	}
	for i := 0; i < a.NumElements(); i++ {
		if math.Abs(a.Float64At(i)-b.Float64At(i)) > atol {
			return false
		}
	}
	return true
}
