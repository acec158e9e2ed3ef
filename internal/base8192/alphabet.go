// Package base8192 implements a binary-to-text codec over a fixed alphabet
// of 8192 printable symbols, each carrying 13 bits of payload.
package base8192

import (
	"errors"
	"fmt"
)

// The alphabet is the contiguous block of 8192 CJK unified ideographs
// starting at U+4E00. The block contains no whitespace or control
// characters, so text channels pass it through unmodified, and the choice
// is bit-for-bit compatible with previously produced artifacts.
const (
	alphabetBase = 0x4E00
	alphabetSize = 8192

	// bitsPerSymbol is the payload width of one symbol: 2^13 = 8192.
	bitsPerSymbol = 13
)

// ErrUnknownSymbol is returned when decoding text that contains a rune
// outside the 8192-symbol alphabet.
var ErrUnknownSymbol = errors.New("symbol outside base8192 alphabet")

// UnknownSymbolError reports the offending rune and its position.
type UnknownSymbolError struct {
	Rune rune // The rune outside the alphabet
	Pos  int  // Rune index within the input text
}

// Error implements the error interface.
func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q at position %d outside base8192 alphabet", e.Rune, e.Pos)
}

// Unwrap allows errors.Is(err, ErrUnknownSymbol).
func (e *UnknownSymbolError) Unwrap() error {
	return ErrUnknownSymbol
}

// Alphabet is the fixed bijective mapping between symbol indices [0, 8192)
// and runes. It is immutable after construction; the package-level Default
// instance is the single shared copy used by the codec.
type Alphabet struct {
	base rune
}

// Default is the shared alphabet, constructed once at package init.
var Default = NewAlphabet()

// NewAlphabet builds the fixed 8192-symbol alphabet.
//
// The mapping is a contiguous code-point range, so both directions reduce
// to offset arithmetic; no tables are materialized.
func NewAlphabet() *Alphabet {
	return &Alphabet{base: alphabetBase}
}

// Len returns the number of symbols in the alphabet.
func (a *Alphabet) Len() int {
	return alphabetSize
}

// SymbolAt returns the rune for index i. Panics if i is outside [0, 8192);
// the codec only produces indices from 13-bit groups, which cannot overflow.
func (a *Alphabet) SymbolAt(i int) rune {
	if i < 0 || i >= alphabetSize {
		panic(fmt.Sprintf("base8192: symbol index %d out of range", i))
	}
	return a.base + rune(i)
}

// IndexOf returns the index of rune r, or an error wrapping ErrUnknownSymbol
// if r is outside the alphabet.
func (a *Alphabet) IndexOf(r rune) (int, error) {
	i := int(r - a.base)
	if i < 0 || i >= alphabetSize {
		return 0, &UnknownSymbolError{Rune: r}
	}
	return i, nil
}
