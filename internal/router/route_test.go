package router

import "testing"

func TestRouteSnapshot_PerDepthTopicNaming(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapshotTopicPrefix = "market_depth_snapshot_"
	cfg.UseDepthInTopic = true
	r := New(cfg)

	msg := r.RouteSnapshot("ABC", 5, "{}")
	if msg.Topic != "market_depth_snapshot_5" {
		t.Fatalf("unexpected topic: %q", msg.Topic)
	}
	if msg.Key != "ABC" {
		t.Fatalf("expected key to be the symbol, got %q", msg.Key)
	}
}

func TestRouteSnapshot_PerSymbolTopicNaming(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapshotTopicPrefix = "market_depth."
	cfg.UseDepthInTopic = false
	r := New(cfg)

	msg := r.RouteSnapshot("ABC", 5, "{}")
	if msg.Topic != "market_depth.ABC" {
		t.Fatalf("unexpected topic: %q", msg.Topic)
	}
}

func TestRouteSnapshot_PartitionDeterminismAcrossDepths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumPartitions = 8
	r := New(cfg)

	a := r.RouteSnapshot("ABC", 5, "{}")
	b := r.RouteSnapshot("ABC", 10, "{}")
	if a.Partition != b.Partition {
		t.Fatalf("expected partition to depend only on symbol, got %d vs %d", a.Partition, b.Partition)
	}
}

func TestRouteSnapshot_PartitionDisabledReturnsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseSymbolPartitioning = false
	r := New(cfg)

	msg := r.RouteSnapshot("ABC", 5, "{}")
	if msg.Partition != UnspecifiedPartition {
		t.Fatalf("expected unspecified partition sentinel, got %d", msg.Partition)
	}
}

func TestRouteCDC_UsesConfiguredTopic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CDCTopic = "market_depth_cdc"
	r := New(cfg)

	msg := r.RouteCDC("ABC", "{}")
	if msg.Topic != "market_depth_cdc" {
		t.Fatalf("unexpected CDC topic: %q", msg.Topic)
	}
}

func TestHashSymbol_IsDeterministic(t *testing.T) {
	a := HashSymbol("ABC")
	b := HashSymbol("ABC")
	if a != b {
		t.Fatalf("expected HashSymbol to be deterministic, got %d vs %d", a, b)
	}
	if HashSymbol("ABC") == HashSymbol("XYZ") {
		t.Fatalf("expected different symbols to (almost certainly) hash differently")
	}
}

func TestHashSymbol_KnownVector(t *testing.T) {
	// FNV-1a 64-bit of the empty string is the documented offset basis.
	const fnvOffsetBasis64 uint64 = 0xcbf29ce484222325
	if got := HashSymbol(""); got != fnvOffsetBasis64 {
		t.Fatalf("HashSymbol(\"\") = %#x, want %#x", got, fnvOffsetBasis64)
	}
}
