// Package book maintains per-symbol order-book state: the normalised
// current Snapshot, the previous Snapshot kept for diffing, and the
// level-diff (CDC) events derived between successive updates.
//
// A BookState is owned exclusively by whichever goroutine is currently
// dispatching that symbol's snapshot (see internal/pipeline); Registry
// only arbitrates creation, not per-symbol serialisation.
package book
