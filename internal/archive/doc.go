// Package archive implements the optional Postgres audit sink for
// published snapshot/CDC payloads. It is disabled by default and does
// not participate in book-state reconstruction: the "does not
// persist state" property of the core processing loop refers to that
// reconstruction path, not to this downstream archival log.
//
// The batching/flush mechanics are grounded on
// internal/writer/orderbook.go.
package archive
