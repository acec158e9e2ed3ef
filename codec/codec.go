// Copyright 2025 Hanzipack Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package codec provides the public API for the base-8192 binary-to-text
// codec used by hanzipack.
//
// The codec maps every 13 bits of input to one symbol from a fixed alphabet
// of 8192 CJK ideographs starting at U+4E00. The trailing group is
// zero-padded on encode and stripped by truncation on decode, so
// Decode(Encode(b)) == b for every byte sequence b.
//
// Example:
//
//	text := codec.Encode(compressed)
//	data, err := codec.Decode(text)
//	if errors.Is(err, codec.ErrUnknownSymbol) {
//	    // text contained a rune outside the alphabet
//	}
package codec

import (
	"github.com/hanzi-ml/hanzipack/internal/base8192"
)

// ErrUnknownSymbol is returned when decoding text that contains a rune
// outside the 8192-symbol alphabet.
var ErrUnknownSymbol = base8192.ErrUnknownSymbol

// UnknownSymbolError reports the offending rune and its position.
type UnknownSymbolError = base8192.UnknownSymbolError

// Alphabet is the fixed bijective mapping between symbol indices and runes.
type Alphabet = base8192.Alphabet

// DefaultAlphabet is the shared alphabet instance.
var DefaultAlphabet = base8192.Default

// Encode encodes bytes to base-8192 text.
func Encode(data []byte) string {
	return base8192.Encode(data)
}

// Decode decodes base-8192 text back to bytes.
func Decode(text string) ([]byte, error) {
	return base8192.Decode(text)
}
