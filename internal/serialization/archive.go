package serialization

import (
	"fmt"
	"os"

	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

// The on-disk weight archive is the same blob format written to a file.
// It is the input artifact of the encode pipeline and the output artifact
// of decode-to-disk.

// LoadArchive reads a weight archive from a path.
func LoadArchive(path string) (map[string]*tensor.RawTensor, *Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for archive loading
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read archive: %w", err)
	}

	stateDict, header, err := Unmarshal(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse archive %s: %w", path, err)
	}
	return stateDict, header, nil
}

// SaveArchive writes a weight archive to a path. Metadata may be nil.
func SaveArchive(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	blob, err := Marshal(stateDict, metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize archive: %w", err)
	}

	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}
