package router

// Config holds the routing settings.
//
// SnapshotTopicPrefix is concatenated directly with either the depth
// or the symbol depending on UseDepthInTopic, so the prefix itself
// must carry any separator: "market_depth_snapshot_" for the per-depth
// scheme or "market_depth." for the per-symbol scheme.
type Config struct {
	SnapshotTopicPrefix   string
	CDCTopic              string
	UseDepthInTopic       bool
	UseSymbolPartitioning bool
	NumPartitions         int
}

// DefaultConfig returns the per-depth topic-naming scheme with symbol
// partitioning enabled.
func DefaultConfig() Config {
	return Config{
		SnapshotTopicPrefix:   "market_depth_snapshot_",
		CDCTopic:              "market_depth_cdc",
		UseDepthInTopic:       true,
		UseSymbolPartitioning: true,
		NumPartitions:         8,
	}
}

// UnspecifiedPartition is the sentinel returned when
// UseSymbolPartitioning is false: the bus assigns the partition.
const UnspecifiedPartition = -1

// RoutedMessage is the fully-addressed message the Router hands to the
// bus producer, grounded on KafkaMessage in the reference
// MessageFactory.hpp.
type RoutedMessage struct {
	Topic     string
	Key       string
	Payload   string
	Partition int
}
