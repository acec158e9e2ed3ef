// Copyright 2025 Hanzipack Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package weights provides the public API for the hanzipack encode/decode
// pipeline: weight archives in, printable text artifacts out, and back.
//
// Encode direction: float tensors are narrowed to half precision, the
// dictionary is serialized to a blob, zlib-compressed, and base-8192
// encoded. Decode is the exact inverse chain; the precision reduction is
// lossy and is never undone.
//
// Example:
//
//	err := weights.EncodeModel("model.hzw", "model.txt", weights.DefaultOptions())
//	stateDict, _, err := weights.DecodeModelFile("model.txt")
package weights

import (
	"github.com/hanzi-ml/hanzipack/internal/pipeline"
	"github.com/hanzi-ml/hanzipack/internal/serialization"
	"github.com/hanzi-ml/hanzipack/internal/tensor"
)

// StateDict is a weight dictionary: tensor name to tensor.
type StateDict = map[string]*tensor.RawTensor

// RawTensor is the tensor container the pipeline operates on.
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DataType represents runtime tensor type information.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Header is the blob header with tensor and tool metadata.
type Header = serialization.Header

// Options configures the encode direction.
type Options = pipeline.Options

// Error conditions surfaced by the pipeline.
var (
	// ErrCorruptStream: decompression or deserialization failed on
	// malformed bytes.
	ErrCorruptStream = serialization.ErrCorruptStream
	// ErrUnsupportedElementType: precision reduction met a dtype it cannot
	// classify.
	ErrUnsupportedElementType = pipeline.ErrUnsupportedElementType
)

// DefaultOptions returns the historical defaults (zlib level 9).
func DefaultOptions() Options {
	return pipeline.DefaultOptions()
}

// Encode transforms a state dictionary into a text artifact.
func Encode(stateDict StateDict, opts Options) (string, error) {
	return pipeline.Encode(stateDict, opts)
}

// Decode reverses Encode.
func Decode(text string) (StateDict, *Header, error) {
	return pipeline.Decode(text)
}

// EncodeModel reads a weight archive and writes the text artifact.
func EncodeModel(archivePath, outputPath string, opts Options) error {
	return pipeline.EncodeModel(archivePath, outputPath, opts)
}

// DecodeModelFile reads a text artifact from disk and decodes it.
func DecodeModelFile(path string) (StateDict, *Header, error) {
	return pipeline.DecodeModelFile(path)
}

// ReduceToHalf narrows float tensors to half precision, passing non-float
// tensors through untouched.
func ReduceToHalf(stateDict StateDict) (StateDict, error) {
	return pipeline.ReduceToHalf(stateDict)
}

// LoadArchive reads a weight archive from a path.
func LoadArchive(path string) (StateDict, *Header, error) {
	return serialization.LoadArchive(path)
}

// SaveArchive writes a weight archive to a path.
func SaveArchive(path string, stateDict StateDict, metadata map[string]string) error {
	return serialization.SaveArchive(path, stateDict, metadata)
}
