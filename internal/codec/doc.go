// Package codec implements the two orthogonal responsibilities of the
// wire/JSON boundary: decoding a binary envelope into model.Envelope,
// and formatting book.Snapshot / book.CDCEvent values as the JSON
// documents downstream consumers expect.
//
// Decode is pure and allocation-light; Encode formats scaled-integer
// prices and quantities as fixed-point strings rather than floats, so
// downstream JSON parsers never round a price.
package codec
