package serialization

import "errors"

// ErrCorruptStream is the root cause for every structural failure while
// reading a blob: bad magic, unsupported version, truncated or oversized
// header, offsets outside the data section, or an unknown dtype. Callers
// match it with errors.Is.
var ErrCorruptStream = errors.New("corrupt weight stream")

// Specific structural failures, all wrapping ErrCorruptStream.
var (
	ErrInvalidMagic       = wrap("invalid magic bytes")
	ErrUnsupportedVersion = wrap("unsupported format version")
	ErrHeaderTooLarge     = wrap("header exceeds maximum size")
	ErrTruncated          = wrap("blob truncated")
	ErrOutOfBounds        = wrap("tensor extends beyond data section")
	ErrOffsetOverlap      = wrap("tensor offsets overlap")
	ErrUnknownDType       = wrap("unknown tensor dtype")
)

func wrap(msg string) error {
	return &corruptError{msg: msg}
}

type corruptError struct {
	msg string
}

func (e *corruptError) Error() string {
	return ErrCorruptStream.Error() + ": " + e.msg
}

func (e *corruptError) Unwrap() error {
	return ErrCorruptStream
}
