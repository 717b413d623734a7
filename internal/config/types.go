package config

import "time"

// Config is the root configuration for a marketdepth instance,
// grounded on kalshi/internal/config/config.go's GathererConfig shape.
type Config struct {
	Processor    ProcessorConfig    `yaml:"processor"`
	DepthConfig  DepthConfig        `yaml:"depth_config"`
	JSONConfig   JSONConfig         `yaml:"json_config"`
	TopicConfig  TopicConfig        `yaml:"topic_config"`
	Bus          BusConfig          `yaml:"bus"`
	Archive      ArchiveConfig      `yaml:"archive"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
}

// ProcessorConfig holds the ingress/loop timing settings.
type ProcessorConfig struct {
	InputTopic      string `yaml:"input_topic"`
	PollTimeoutMS   int    `yaml:"poll_timeout_ms"`
	NumPartitions   int    `yaml:"num_partitions"`
	FlushIntervalMS int    `yaml:"flush_interval_ms"`
	StatsIntervalS  int    `yaml:"stats_interval_s"`
}

// DepthConfig holds the book-state settings.
type DepthConfig struct {
	Levels             []int `yaml:"levels"`
	EnableCDC          bool  `yaml:"enable_cdc"`
	EnableSnapshots    bool  `yaml:"enable_snapshots"`
	MaxPriceLevels     int   `yaml:"max_price_levels"`
}

// JSONConfig holds the egress JSON formatting settings.
type JSONConfig struct {
	PriceDecimals    int    `yaml:"price_decimals"`
	QuantityDecimals int    `yaml:"quantity_decimals"`
	IncludeTimestamp bool   `yaml:"include_timestamp"`
	IncludeSequence  bool   `yaml:"include_sequence"`
	CompactFormat    bool   `yaml:"compact_format"`
	ExchangeName     string `yaml:"exchange_name"`
}

// TopicConfig holds the routing settings.
type TopicConfig struct {
	SnapshotTopicPrefix   string `yaml:"snapshot_topic_prefix"`
	CDCTopic              string `yaml:"cdc_topic"`
	UseDepthInTopic       bool   `yaml:"use_depth_in_topic"`
	UseSymbolPartitioning bool   `yaml:"use_symbol_partitioning"`
	NumPartitions         int    `yaml:"num_partitions"`
}

// BusConfig holds the kafka-go connection settings.
type BusConfig struct {
	Brokers        []string      `yaml:"brokers"`
	GroupID        string        `yaml:"group_id"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
}

// ArchiveConfig holds the optional Postgres archival sink settings.
// DSN takes precedence over the structured DB.* fields when set (see
// internal/database.BuildConnString).
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DSN           string        `yaml:"dsn"`
	DB            DBConfig      `yaml:"db"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds the structured connection fields consulted when
// ArchiveConfig.DSN is empty, grounded on
// kalshi/internal/config/config.go's DBConfig.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MinConns int32  `yaml:"min_conns"`
	MaxConns int32  `yaml:"max_conns"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// PipelineConfig holds the worker-pool, backpressure-queue, and
// runtime-cap settings.
type PipelineConfig struct {
	NumWorkers        int `yaml:"num_workers"`
	NumPublishWorkers int `yaml:"num_publish_workers"`
	PublishQueueSize  int `yaml:"publish_queue_size"`
	MaxRuntimeSeconds int `yaml:"max_runtime_seconds"`
}
