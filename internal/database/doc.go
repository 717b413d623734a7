// Package database owns the Postgres connection pool backing
// internal/archive's audit sink. It is grounded on
// kalshi/internal/database/pools.go, narrowed to a single pool: the
// market-depth archive has no time-series/relational split, just one
// published_messages table.
package database
