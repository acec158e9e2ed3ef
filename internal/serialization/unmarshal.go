package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

// MaxHeaderSize caps the JSON header so a malformed blob cannot force a
// huge allocation.
const MaxHeaderSize = 100 * 1024 * 1024 // 100MB

// Unmarshal parses a weight blob back into a state dictionary.
//
// Every structural failure returns an error wrapping ErrCorruptStream.
// Tensor data is copied out of the blob, so the returned tensors do not
// alias the input slice.
func Unmarshal(blob []byte) (map[string]*tensor.RawTensor, *Header, error) {
	if len(blob) < fixedPrefixSize {
		return nil, nil, fmt.Errorf("blob is %d bytes: %w", len(blob), ErrTruncated)
	}

	if string(blob[:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(blob[4:8])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("got version %d, expected %d: %w", version, FormatVersion, ErrUnsupportedVersion)
	}

	// Flags at blob[8:12] are informational; nothing to act on in v1.

	headerSize := binary.LittleEndian.Uint64(blob[12:20])
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("header size %d: %w", headerSize, ErrHeaderTooLarge)
	}
	if uint64(len(blob)-fixedPrefixSize) < headerSize {
		return nil, nil, fmt.Errorf("header claims %d bytes, blob has %d: %w",
			headerSize, len(blob)-fixedPrefixSize, ErrTruncated)
	}

	var header Header
	headerEnd := fixedPrefixSize + int(headerSize)
	if err := json.Unmarshal(blob[fixedPrefixSize:headerEnd], &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON (%v): %w", err, ErrCorruptStream)
	}

	padding := (HeaderAlignment - (int64(headerEnd) % HeaderAlignment)) % HeaderAlignment
	dataOffset := int64(headerEnd) + padding
	if dataOffset > int64(len(blob)) {
		return nil, nil, fmt.Errorf("data section starts at %d, blob has %d bytes: %w",
			dataOffset, len(blob), ErrTruncated)
	}
	data := blob[dataOffset:]

	if err := validateTensorMeta(header.Tensors, int64(len(data))); err != nil {
		return nil, nil, err
	}

	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, nil, fmt.Errorf("tensor %q has dtype %q: %w", meta.Name, meta.DType, ErrUnknownDType)
		}

		buf := make([]byte, meta.Size)
		copy(buf, data[meta.Offset:meta.Offset+meta.Size])

		raw, err := tensor.FromBytes(buf, tensor.Shape(meta.Shape), dtype)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %v: %w", meta.Name, err, ErrCorruptStream)
		}
		stateDict[meta.Name] = raw
	}

	return stateDict, &header, nil
}

// validateTensorMeta checks offsets and sizes before any allocation: no
// negative values, no reads past the data section, no overlapping tensors.
func validateTensorMeta(tensors []TensorMeta, dataSize int64) error {
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	var prevEnd int64
	var prevName string
	for _, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return fmt.Errorf("tensor %q: offset=%d size=%d: %w", t.Name, t.Offset, t.Size, ErrOutOfBounds)
		}
		if t.Offset+t.Size > dataSize {
			return fmt.Errorf("tensor %q: [%d, %d) beyond data size %d: %w",
				t.Name, t.Offset, t.Offset+t.Size, dataSize, ErrOutOfBounds)
		}
		if t.Offset < prevEnd {
			return fmt.Errorf("tensors %q and %q: %w", prevName, t.Name, ErrOffsetOverlap)
		}
		prevEnd = t.Offset + t.Size
		prevName = t.Name
	}
	return nil
}
