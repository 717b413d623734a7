package codec

import "errors"

// ErrTruncatedEnvelope is returned when the envelope ends before a
// length-prefixed field it declares has been fully read.
var ErrTruncatedEnvelope = errors.New("codec: truncated envelope")

// ErrEmptyEnvelope is returned for a zero-length input; there is no
// msgType byte to read.
var ErrEmptyEnvelope = errors.New("codec: empty envelope")
