// Package pipeline drives end-to-end processing: it owns the consumer
// and producer handles, the book registry, codec, router, and
// performance metrics, and runs the worker pool, grounded on
// MarketDepthProcessor.cpp and generalised onto the reference
// implementation's Start/Stop goroutine-group idiom
// (kalshi/internal/poller/poller.go, kalshi/internal/writer/orderbook.go).
//
// Polling and per-symbol processing run on separate goroutine tiers.
// Pollers decode messages and hash each symbol to one of NumWorkers
// shard queues; a single shard goroutine drains each queue, so a given
// symbol's BookState is only ever mutated by one goroutine at a time.
package pipeline
