package ber

import (
	"errors"
	"fmt"
)

// ErrNeedMoreData is returned by the scanner when the cursor runs out in the
// middle of a TLV. It is a suspension signal, not a failure: the partial TLV
// is kept and scanning resumes with the next chunk.
var ErrNeedMoreData = errors.New("ber: need more data")

// Decoder errors
var (
	// ErrInvalidLength is returned when a length value is malformed or too large.
	ErrInvalidLength = errors.New("ber: invalid length encoding")

	// ErrIndefiniteLength is returned for the 0x80 length marker.
	ErrIndefiniteLength = fmt.Errorf("%w: indefinite length not supported", ErrInvalidLength)

	// ErrLengthOverflow is returned when a length exceeds the configured maximum.
	ErrLengthOverflow = fmt.Errorf("%w: length value overflow", ErrInvalidLength)

	// ErrInvalidTag is returned for identifier octets that are malformed, too
	// long, or an end-of-contents marker outside indefinite-length encoding.
	ErrInvalidTag = errors.New("ber: invalid tag encoding")

	// ErrInvalidBoolean is returned when a boolean value has invalid length.
	ErrInvalidBoolean = errors.New("ber: invalid boolean encoding")

	// ErrInvalidInteger is returned when an integer value is malformed.
	ErrInvalidInteger = errors.New("ber: invalid integer encoding")

	// ErrInvalidOID is returned for object identifiers that cannot be
	// parsed from either the dotted or the binary form.
	ErrInvalidOID = errors.New("ber: invalid object identifier")
)

// Encoder errors
var (
	// ErrBufferTooSmall is returned when a write does not fit in the buffer.
	ErrBufferTooSmall = errors.New("ber: buffer too small")

	// ErrNegativeLength is returned when a negative length is written.
	ErrNegativeLength = errors.New("ber: negative length not allowed")
)
