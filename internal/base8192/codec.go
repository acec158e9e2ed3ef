package base8192

import (
	"errors"
	"strings"
)

// Codec packs bytes into 13-bit symbol groups and back. The zero value is
// not usable; construct with NewCodec or use the package-level Encode and
// Decode, which share the Default alphabet.
type Codec struct {
	alphabet *Alphabet
}

// NewCodec creates a codec over the given alphabet.
func NewCodec(alphabet *Alphabet) *Codec {
	return &Codec{alphabet: alphabet}
}

var defaultCodec = NewCodec(Default)

// Encode encodes bytes with the shared default alphabet.
func Encode(data []byte) string {
	return defaultCodec.Encode(data)
}

// Decode decodes text with the shared default alphabet.
func Decode(text string) ([]byte, error) {
	return defaultCodec.Decode(text)
}

// Encode maps every 13 bits of input, MSB first, to one symbol. The final
// group is zero-padded on the right; padding never reaches a full byte, so
// Decode recovers the exact input by dropping the trailing partial group.
// Produces exactly ceil(8*len(data)/13) symbols; empty input yields "".
func (c *Codec) Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	numSymbols := (8*len(data) + bitsPerSymbol - 1) / bitsPerSymbol

	var b strings.Builder
	// Every symbol is a 3-byte UTF-8 sequence in this block.
	b.Grow(numSymbols * 3)

	var acc uint32 // Bit accumulator, MSB-aligned consumption
	var nbits uint // Bits currently held in acc

	for _, by := range data {
		acc = acc<<8 | uint32(by)
		nbits += 8
		for nbits >= bitsPerSymbol {
			nbits -= bitsPerSymbol
			idx := int(acc>>nbits) & (alphabetSize - 1)
			b.WriteRune(c.alphabet.SymbolAt(idx))
		}
	}

	// Flush the remainder, zero-padded to a full 13-bit group.
	if nbits > 0 {
		idx := int(acc<<(bitsPerSymbol-nbits)) & (alphabetSize - 1)
		b.WriteRune(c.alphabet.SymbolAt(idx))
	}

	return b.String()
}

// Decode expands every symbol to its 13-bit index, MSB first, regroups the
// stream into bytes, and drops any trailing group shorter than 8 bits. That
// trailing group is exactly the encode-time padding (at most 12 bits), so
// decode(encode(b)) == b for every byte sequence b.
//
// Returns an error wrapping ErrUnknownSymbol if the text contains a rune
// outside the alphabet; no partial output is produced.
func (c *Codec) Decode(text string) ([]byte, error) {
	if text == "" {
		return []byte{}, nil
	}

	// len(text)/3 is exact for this alphabet's UTF-8 width.
	out := make([]byte, 0, len(text)/3*bitsPerSymbol/8)

	var acc uint32
	var nbits uint

	pos := 0
	for _, r := range text {
		idx, err := c.alphabet.IndexOf(r)
		if err != nil {
			var unknown *UnknownSymbolError
			if errors.As(err, &unknown) {
				unknown.Pos = pos
			}
			return nil, err
		}
		pos++

		acc = acc<<bitsPerSymbol | uint32(idx)
		nbits += bitsPerSymbol
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
		}
	}

	// Whatever is left in acc is shorter than a byte: discard it.
	return out, nil
}
