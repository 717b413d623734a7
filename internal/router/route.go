package router

import (
	"hash/fnv"
	"strconv"
)

// Router applies a Config to produce RoutedMessage values. It carries
// no mutable state; the zero value plus a Config is sufficient, but a
// constructor is provided for symmetry with the rest of the package
// layout.
type Router struct {
	cfg Config
}

// New constructs a Router bound to cfg.
func New(cfg Config) *Router {
	return &Router{cfg: cfg}
}

// RouteSnapshot computes the topic/partition/key for one depth-limited
// snapshot payload.
func (r *Router) RouteSnapshot(symbol string, depth int, payload string) RoutedMessage {
	topic := r.snapshotTopic(depth, symbol)
	return RoutedMessage{
		Topic:     topic,
		Key:       symbol,
		Payload:   payload,
		Partition: r.partitionFor(symbol),
	}
}

// RouteCDC computes the topic/partition/key for one CDC event: always
// the configured CDC topic, same partitioning rule as snapshots.
func (r *Router) RouteCDC(symbol string, payload string) RoutedMessage {
	return RoutedMessage{
		Topic:     r.cfg.CDCTopic,
		Key:       symbol,
		Payload:   payload,
		Partition: r.partitionFor(symbol),
	}
}

func (r *Router) snapshotTopic(depth int, symbol string) string {
	if r.cfg.UseDepthInTopic {
		return r.cfg.SnapshotTopicPrefix + strconv.Itoa(depth)
	}
	return r.cfg.SnapshotTopicPrefix + symbol
}

func (r *Router) partitionFor(symbol string) int {
	if !r.cfg.UseSymbolPartitioning {
		return UnspecifiedPartition
	}
	if r.cfg.NumPartitions <= 0 {
		return UnspecifiedPartition
	}
	return int(HashSymbol(symbol) % uint64(r.cfg.NumPartitions))
}

// HashSymbol is the canonical stable hash used for partition
// assignment: FNV-1a 64-bit over the symbol's UTF-8 bytes. Every
// producer in a deployment
// must use this same function, or routing disagrees across processes.
func HashSymbol(symbol string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return h.Sum64()
}
