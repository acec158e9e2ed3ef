// Package serialization provides the structured blob format hanzipack uses
// for weight dictionaries, both in memory (the pipeline compresses the blob
// before encoding it to text) and on disk (the weight archive).
//
//	Blob Structure:
//	  [4 bytes: Magic "HZWT"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [Tensor data: raw bytes, 64-byte aligned, sorted by tensor name]
//
// The format supports multiple data types (float16/32/64, int32/64, uint8,
// bool), arbitrary tensor shapes, and custom metadata. Tensor data is
// written in sorted-name order so identical inputs always produce identical
// blobs; the compressed, text-encoded artifact is therefore deterministic.
package serialization
