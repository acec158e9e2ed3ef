// Package textstat reports what an encoded artifact costs on a text
// channel: symbol count, UTF-8 byte count, and LLM token count.
package textstat

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding for GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding for GPT-3.
	EncodingP50kBase = "p50k_base"

	// DefaultEncoding is used when no encoding is configured.
	DefaultEncoding = EncodingCL100kBase
)

// Estimator counts LLM tokens for encoded text artifacts.
type Estimator struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewEstimator creates an estimator for the named tiktoken encoding.
func NewEstimator(encodingName string) (*Estimator, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &Estimator{encoding: encoding, name: encodingName}, nil
}

// Name returns the encoding name.
func (e *Estimator) Name() string {
	return e.name
}

// Count returns the number of tokens the text consumes.
func (e *Estimator) Count(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}

// Stats summarizes an encoded artifact.
type Stats struct {
	Symbols int // Alphabet symbols (runes)
	Bytes   int // UTF-8 bytes on disk
	Tokens  int // LLM tokens under the estimator's encoding
}

// Measure computes the full summary for an encoded artifact.
func (e *Estimator) Measure(text string) Stats {
	return Stats{
		Symbols: utf8.RuneCountInString(text),
		Bytes:   len(text),
		Tokens:  e.Count(text),
	}
}
