package config

import "time"

// Default values for optional configuration fields, grounded on
// internal/config/defaults.go's applyDefaults idiom.
const (
	DefaultInputTopic        = "market_depth_ingress"
	DefaultPollTimeoutMS     = 100
	DefaultNumPartitions     = 8
	DefaultFlushIntervalMS   = 1000
	DefaultStatsIntervalS    = 30

	DefaultMaxPriceLevels = 100

	DefaultPriceDecimals    = 4
	DefaultQuantityDecimals = 2
	DefaultExchangeName     = "CXA"

	DefaultSnapshotTopicPrefix = "market_depth_snapshot_"
	DefaultCDCTopic            = "market_depth_cdc"

	DefaultBusGroupID        = "marketdepth"
	DefaultBusSessionTimeout = 10 * time.Second
	DefaultBusMaxRetries     = 3
	DefaultBusRetryBackoff   = 100 * time.Millisecond

	DefaultArchiveBatchSize     = 500
	DefaultArchiveFlushInterval = 2 * time.Second

	DefaultMetricsPort = 9090
	DefaultMetricsPath = "/metrics"

	DefaultNumWorkers        = 4
	DefaultNumPublishWorkers = 2
	DefaultPublishQueueSize  = 1024
)

func (c *Config) applyDefaults() {
	if c.Processor.InputTopic == "" {
		c.Processor.InputTopic = DefaultInputTopic
	}
	if c.Processor.PollTimeoutMS == 0 {
		c.Processor.PollTimeoutMS = DefaultPollTimeoutMS
	}
	if c.Processor.NumPartitions == 0 {
		c.Processor.NumPartitions = DefaultNumPartitions
	}
	if c.Processor.FlushIntervalMS == 0 {
		c.Processor.FlushIntervalMS = DefaultFlushIntervalMS
	}
	if c.Processor.StatsIntervalS == 0 {
		c.Processor.StatsIntervalS = DefaultStatsIntervalS
	}

	if len(c.DepthConfig.Levels) == 0 {
		c.DepthConfig.Levels = []int{5, 10, 25, 50}
	}
	if c.DepthConfig.MaxPriceLevels == 0 {
		c.DepthConfig.MaxPriceLevels = DefaultMaxPriceLevels
	}

	if c.JSONConfig.PriceDecimals == 0 {
		c.JSONConfig.PriceDecimals = DefaultPriceDecimals
	}
	if c.JSONConfig.QuantityDecimals == 0 {
		c.JSONConfig.QuantityDecimals = DefaultQuantityDecimals
	}
	if c.JSONConfig.ExchangeName == "" {
		c.JSONConfig.ExchangeName = DefaultExchangeName
	}

	if c.TopicConfig.SnapshotTopicPrefix == "" {
		c.TopicConfig.SnapshotTopicPrefix = DefaultSnapshotTopicPrefix
	}
	if c.TopicConfig.CDCTopic == "" {
		c.TopicConfig.CDCTopic = DefaultCDCTopic
	}
	if c.TopicConfig.NumPartitions == 0 {
		c.TopicConfig.NumPartitions = DefaultNumPartitions
	}

	if c.Bus.GroupID == "" {
		c.Bus.GroupID = DefaultBusGroupID
	}
	if c.Bus.SessionTimeout == 0 {
		c.Bus.SessionTimeout = DefaultBusSessionTimeout
	}
	if c.Bus.MaxRetries == 0 {
		c.Bus.MaxRetries = DefaultBusMaxRetries
	}
	if c.Bus.RetryBackoff == 0 {
		c.Bus.RetryBackoff = DefaultBusRetryBackoff
	}

	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultArchiveBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultArchiveFlushInterval
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Pipeline.NumWorkers == 0 {
		c.Pipeline.NumWorkers = DefaultNumWorkers
	}
	if c.Pipeline.NumPublishWorkers == 0 {
		c.Pipeline.NumPublishWorkers = DefaultNumPublishWorkers
	}
	if c.Pipeline.PublishQueueSize == 0 {
		c.Pipeline.PublishQueueSize = DefaultPublishQueueSize
	}
}
