package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// RawTensor is the low-level tensor representation: a data type, a shape,
// and a flat byte buffer in little-endian, row-major order.
//
// RawTensor is the unit the serialization and pipeline packages operate on.
// It carries no device or gradient state; it is a value container.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		data:  make([]byte, byteSize),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromBytes creates a RawTensor over an existing little-endian byte buffer.
// The buffer is not copied; it must be exactly NumElements*dtype.Size() long.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("buffer size mismatch for %s %v: got %d bytes, want %d", dtype, shape, len(data), want)
	}
	return &RawTensor{
		data:  data,
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat32 creates a Float32 RawTensor from a value slice.
func FromFloat32(values []float32, shape Shape) (*RawTensor, error) {
	r, err := newRawForValues(shape, Float32, len(values))
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat32(), values)
	return r, nil
}

// FromFloat64 creates a Float64 RawTensor from a value slice.
func FromFloat64(values []float64, shape Shape) (*RawTensor, error) {
	r, err := newRawForValues(shape, Float64, len(values))
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat64(), values)
	return r, nil
}

// FromInt32 creates an Int32 RawTensor from a value slice.
func FromInt32(values []int32, shape Shape) (*RawTensor, error) {
	r, err := newRawForValues(shape, Int32, len(values))
	if err != nil {
		return nil, err
	}
	copy(r.AsInt32(), values)
	return r, nil
}

// FromInt64 creates an Int64 RawTensor from a value slice.
func FromInt64(values []int64, shape Shape) (*RawTensor, error) {
	r, err := newRawForValues(shape, Int64, len(values))
	if err != nil {
		return nil, err
	}
	copy(r.AsInt64(), values)
	return r, nil
}

func newRawForValues(shape Shape, dtype DataType, n int) (*RawTensor, error) {
	if shape.NumElements() != n {
		return nil, fmt.Errorf("shape %v holds %d elements, got %d values", shape, shape.NumElements(), n)
	}
	return NewRaw(shape, dtype)
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat16 interprets the data as []uint16 half-precision bit patterns.
// Use Float16ToFloat32 to widen individual values.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []uint16 {
	r.mustBe(Float16)
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*uint16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.data // Already []byte = []uint8
}

// Float16At returns element i widened to float32.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) Float16At(i int) float32 {
	r.mustBe(Float16)
	h := binary.LittleEndian.Uint16(r.data[i*2:])
	return Float16ToFloat32(h)
}

// Float64At returns element i of any float tensor widened to float64.
// Panics if the tensor's dtype is not a float kind.
func (r *RawTensor) Float64At(i int) float64 {
	switch r.dtype {
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(r.data[i*4:])))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(r.data[i*8:]))
	case Float16:
		return float64(Float16ToFloat32(binary.LittleEndian.Uint16(r.data[i*2:])))
	default:
		panic(fmt.Sprintf("tensor dtype is %s, not a float kind", r.dtype))
	}
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:  data,
		shape: r.shape.Clone(),
		dtype: r.dtype,
	}
}

func (r *RawTensor) mustBe(dtype DataType) {
	if r.dtype != dtype {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dtype))
	}
}
