// Package metrics owns the Pipeline's performance counters.
//
// PerformanceMetrics is a set of plain atomics updated from any worker
// goroutine without locking, grounded on
// MarketDepthProcessor.hpp::PerformanceMetrics. Registry wraps it with
// a Prometheus exposition grounded on this package's own prior design
// intent (Prometheus metrics for monitoring throughput and latency).
package metrics
