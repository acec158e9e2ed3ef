package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

const toolVersion = "0.1.0" // Current hanzipack version

// Marshal serializes a state dictionary to a weight blob.
//
// The state dictionary is a map from tensor names to tensors. Tensors are
// laid out in sorted-name order, so the blob is deterministic for a given
// input. Metadata may be nil.
func Marshal(stateDict map[string]*tensor.RawTensor, metadata map[string]string) ([]byte, error) {
	header := Header{
		FormatVersion: FormatVersion,
		ToolVersion:   toolVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(stateDict)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Sorted-name order keeps the layout deterministic.
	tensorOrder := make([]string, 0, len(stateDict))
	for name := range stateDict {
		tensorOrder = append(tensorOrder, name)
	}
	sort.Strings(tensorOrder)

	var currentOffset int64
	for _, name := range tensorOrder {
		raw := stateDict[name]
		size := int64(raw.ByteSize())

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: currentOffset,
			Size:   size,
		})

		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(fixedPrefixSize + len(headerJSON) + HeaderAlignment + int(currentOffset))

	// Fixed prefix: magic, version, flags, header size.
	buf.WriteString(MagicBytes)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return nil, fmt.Errorf("failed to write version: %w", err)
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if err := binary.Write(&buf, binary.LittleEndian, flags); err != nil {
		return nil, fmt.Errorf("failed to write flags: %w", err)
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return nil, fmt.Errorf("failed to write header size: %w", err)
	}

	buf.Write(headerJSON)

	// Pad so tensor data starts on a HeaderAlignment boundary.
	currentPos := int64(fixedPrefixSize + len(headerJSON))
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		buf.Write(make([]byte, padding))
	}

	for _, name := range tensorOrder {
		buf.Write(stateDict[name].Data())
	}

	return buf.Bytes(), nil
}
