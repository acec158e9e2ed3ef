// Package pipeline composes the weight-to-text transform: precision
// reduction, blob serialization, zlib compression, and base-8192 text
// encoding, plus the exact inverse chain.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

// ErrUnsupportedElementType is returned when precision reduction meets a
// dtype it cannot classify as floating or non-floating.
var ErrUnsupportedElementType = errors.New("unsupported element type")

// ReduceToHalf narrows every floating-point tensor in the state dictionary
// to Float16 and passes every other tensor through untouched (the returned
// map holds the same tensor, not a copy). The transform is lossy and
// one-way; nothing in the pipeline attempts to recover the original
// precision.
func ReduceToHalf(stateDict map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error) {
	reduced := make(map[string]*tensor.RawTensor, len(stateDict))

	for name, raw := range stateDict {
		switch raw.DType() {
		case tensor.Float32, tensor.Float64:
			half, err := narrowToHalf(raw)
			if err != nil {
				return nil, fmt.Errorf("tensor %q: %w", name, err)
			}
			reduced[name] = half

		case tensor.Float16, tensor.Int32, tensor.Int64, tensor.Uint8, tensor.Bool:
			reduced[name] = raw

		default:
			return nil, fmt.Errorf("tensor %q has dtype %s: %w", name, raw.DType(), ErrUnsupportedElementType)
		}
	}

	return reduced, nil
}

// narrowToHalf converts a Float32 or Float64 tensor element-wise to Float16.
func narrowToHalf(raw *tensor.RawTensor) (*tensor.RawTensor, error) {
	half, err := tensor.NewRaw(raw.Shape(), tensor.Float16)
	if err != nil {
		return nil, err
	}
	bits := half.AsFloat16()

	switch raw.DType() {
	case tensor.Float32:
		src := raw.AsFloat32()
		for i := 0; i < len(src); i++ {
			bits[i] = tensor.Float32ToFloat16(src[i])
		}
	case tensor.Float64:
		src := raw.AsFloat64()
		for i := 0; i < len(src); i++ {
			bits[i] = tensor.Float32ToFloat16(float32(src[i]))
		}
	default:
		return nil, fmt.Errorf("dtype %s: %w", raw.DType(), ErrUnsupportedElementType)
	}

	return half, nil
}
