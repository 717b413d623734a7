package book

import "errors"

// ErrSymbolMismatch is returned when a decoded snapshot's symbol does
// not match the BookState it was dispatched to, a programmer/routing
// error upstream, not a data problem.
var ErrSymbolMismatch = errors.New("book: symbol mismatch")

// ErrDecodeMalformed is returned for a nil or otherwise unusable
// decoded snapshot.
var ErrDecodeMalformed = errors.New("book: malformed decoded snapshot")
