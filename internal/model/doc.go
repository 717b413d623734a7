// Package model defines the decoded view of an ingress order-book
// envelope, produced by internal/codec from the binary wire format and
// consumed by internal/book.
//
// Conventions:
//   - Prices and quantities: scaled unsigned 64-bit integers.
//   - Timestamps: int64 microseconds since Unix epoch.
//   - Symbols: short ASCII identifiers, case-preserved.
package model
