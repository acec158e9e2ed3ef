package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/hanzi-ml/hanzipack/internal/base8192"
	"github.com/hanzi-ml/hanzipack/internal/serialization"
	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

// Options configures the encode direction. The zero value is not valid;
// use DefaultOptions.
type Options struct {
	// CompressionLevel is the zlib level, zlib.BestSpeed to
	// zlib.BestCompression.
	CompressionLevel int

	// Metadata is embedded in the blob header.
	Metadata map[string]string
}

// DefaultOptions matches the historical artifacts: maximum compression.
func DefaultOptions() Options {
	return Options{CompressionLevel: zlib.BestCompression}
}

// Encode transforms a state dictionary into the text artifact:
// reduce to half precision → serialize → compress → base-8192 encode.
func Encode(stateDict map[string]*tensor.RawTensor, opts Options) (string, error) {
	reduced, err := ReduceToHalf(stateDict)
	if err != nil {
		return "", fmt.Errorf("precision reduction failed: %w", err)
	}

	blob, err := serialization.Marshal(reduced, opts.Metadata)
	if err != nil {
		return "", fmt.Errorf("serialization failed: %w", err)
	}

	compressed, err := compress(blob, opts.CompressionLevel)
	if err != nil {
		return "", fmt.Errorf("compression failed: %w", err)
	}

	return base8192.Encode(compressed), nil
}

// Decode reverses Encode: base-8192 decode → decompress → deserialize.
//
// Each stage fails fast; the returned error names the stage and wraps the
// stage-specific cause (base8192.ErrUnknownSymbol or
// serialization.ErrCorruptStream). There is no partial-result mode.
func Decode(text string) (map[string]*tensor.RawTensor, *serialization.Header, error) {
	compressed, err := base8192.Decode(text)
	if err != nil {
		return nil, nil, fmt.Errorf("alphabet decode failed: %w", err)
	}

	blob, err := decompress(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompression failed: %v: %w", err, serialization.ErrCorruptStream)
	}

	stateDict, header, err := serialization.Unmarshal(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("deserialization failed: %w", err)
	}

	return stateDict, header, nil
}

// EncodeModel reads a weight archive, encodes it, and writes the text
// artifact to outputPath. The file content is exactly the symbol sequence,
// UTF-8, with no header or trailer.
func EncodeModel(archivePath, outputPath string, opts Options) error {
	stateDict, _, err := serialization.LoadArchive(archivePath)
	if err != nil {
		return err
	}

	text, err := Encode(stateDict, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write text artifact: %w", err)
	}
	return nil
}

// DecodeModelFile reads a text artifact from disk and decodes it.
func DecodeModelFile(path string) (map[string]*tensor.RawTensor, *serialization.Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for artifact loading
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read text artifact: %w", err)
	}
	return Decode(string(text))
}

func compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close() // Best effort close
	}()

	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return blob, nil
}
