package serialization

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()

	w, err := tensor.FromFloat32([]float32{1.0, -2.5, 3.25, 0.5}, tensor.Shape{2, 2})
	require.NoError(t, err)

	b, err := tensor.FromFloat64([]float64{0.125, -8}, tensor.Shape{2})
	require.NoError(t, err)

	idx, err := tensor.FromInt64([]int64{3, 1, 4, 1, 5}, tensor.Shape{5})
	require.NoError(t, err)

	mask, err := tensor.FromBytes([]byte{1, 0, 1}, tensor.Shape{3}, tensor.Uint8)
	require.NoError(t, err)

	return map[string]*tensor.RawTensor{
		"layer.0.weight": w,
		"layer.0.bias":   b,
		"vocab.index":    idx,
		"mask":           mask,
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	stateDict := testStateDict(t)

	blob, err := Marshal(stateDict, map[string]string{"source": "unit-test"})
	require.NoError(t, err)

	got, header, err := Unmarshal(blob)
	require.NoError(t, err)

	require.Len(t, got, len(stateDict))
	for name, want := range stateDict {
		raw, ok := got[name]
		require.True(t, ok, "missing tensor %q", name)
		assert.Equal(t, want.DType(), raw.DType(), "%s dtype", name)
		assert.True(t, want.Shape().Equal(raw.Shape()), "%s shape", name)
		assert.Equal(t, want.Data(), raw.Data(), "%s data", name)
	}

	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, "unit-test", header.Metadata["source"])
}

func TestMarshalDeterministicLayout(t *testing.T) {
	stateDict := testStateDict(t)

	blob1, err := Marshal(stateDict, nil)
	require.NoError(t, err)
	blob2, err := Marshal(stateDict, nil)
	require.NoError(t, err)

	// Headers embed a timestamp; the tensor layout must still be identical.
	_, h1, err := Unmarshal(blob1)
	require.NoError(t, err)
	_, h2, err := Unmarshal(blob2)
	require.NoError(t, err)

	assert.Equal(t, h1.Tensors, h2.Tensors)
	for i := 1; i < len(h1.Tensors); i++ {
		assert.Less(t, h1.Tensors[i-1].Name, h1.Tensors[i].Name, "tensors must be sorted by name")
	}
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	blob, err := Marshal(testStateDict(t), nil)
	require.NoError(t, err)

	blob[0] = 'X'
	_, _, err = Unmarshal(blob)
	assert.ErrorIs(t, err, ErrCorruptStream)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestUnmarshalRejectsBadVersion(t *testing.T) {
	blob, err := Marshal(testStateDict(t), nil)
	require.NoError(t, err)

	binary.LittleEndian.PutUint32(blob[4:8], 99)
	_, _, err = Unmarshal(blob)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.ErrorIs(t, err, ErrCorruptStream)
}

func TestUnmarshalRejectsTruncation(t *testing.T) {
	blob, err := Marshal(testStateDict(t), nil)
	require.NoError(t, err)

	for _, n := range []int{0, 3, fixedPrefixSize, len(blob) / 2} {
		_, _, err := Unmarshal(blob[:n])
		assert.ErrorIs(t, err, ErrCorruptStream, "prefix of %d bytes should be rejected", n)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, _, err := Unmarshal([]byte("definitely not a weight blob at all"))
	assert.ErrorIs(t, err, ErrCorruptStream)
}

func TestValidateTensorMeta(t *testing.T) {
	tests := []struct {
		name    string
		tensors []TensorMeta
		size    int64
		wantErr error
	}{
		{
			name: "valid adjacent",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 8},
				{Name: "b", Offset: 8, Size: 4},
			},
			size: 12,
		},
		{
			name:    "out of bounds",
			tensors: []TensorMeta{{Name: "a", Offset: 0, Size: 16}},
			size:    12,
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "negative offset",
			tensors: []TensorMeta{{Name: "a", Offset: -4, Size: 8}},
			size:    12,
			wantErr: ErrOutOfBounds,
		},
		{
			name: "overlap",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 8},
				{Name: "b", Offset: 4, Size: 8},
			},
			size:    12,
			wantErr: ErrOffsetOverlap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTensorMeta(tt.tensors, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	stateDict := testStateDict(t)
	path := filepath.Join(t.TempDir(), "weights.hzw")

	require.NoError(t, SaveArchive(path, stateDict, map[string]string{"note": "disk"}))

	got, header, err := LoadArchive(path)
	require.NoError(t, err)
	assert.Len(t, got, len(stateDict))
	assert.Equal(t, "disk", header.Metadata["note"])
	assert.Equal(t, stateDict["mask"].Data(), got["mask"].Data())
}

func TestLoadArchiveMissingFile(t *testing.T) {
	_, _, err := LoadArchive(filepath.Join(t.TempDir(), "nope.hzw"))
	require.Error(t, err)
}
