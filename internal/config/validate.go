package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are
// sane, grounded on internal/config/validate.go's style.
func (c *Config) Validate() error {
	if c.Processor.InputTopic == "" {
		return errors.New("processor.input_topic is required")
	}
	if c.Processor.PollTimeoutMS < 1 {
		return errors.New("processor.poll_timeout_ms must be >= 1")
	}

	if !c.DepthConfig.EnableCDC && !c.DepthConfig.EnableSnapshots {
		return errors.New("depth_config: at least one of enable_cdc or enable_snapshots must be true")
	}
	for _, depth := range c.DepthConfig.Levels {
		if depth < 1 {
			return fmt.Errorf("depth_config.levels: depth %d must be >= 1", depth)
		}
	}
	if c.DepthConfig.MaxPriceLevels < 1 {
		return errors.New("depth_config.max_price_levels must be >= 1")
	}

	if c.JSONConfig.PriceDecimals < 0 {
		return errors.New("json_config.price_decimals must be >= 0")
	}
	if c.JSONConfig.QuantityDecimals < 0 {
		return errors.New("json_config.quantity_decimals must be >= 0")
	}

	if c.TopicConfig.SnapshotTopicPrefix == "" {
		return errors.New("topic_config.snapshot_topic_prefix is required")
	}
	if c.TopicConfig.CDCTopic == "" {
		return errors.New("topic_config.cdc_topic is required")
	}
	if c.TopicConfig.UseSymbolPartitioning && c.TopicConfig.NumPartitions < 1 {
		return errors.New("topic_config.num_partitions must be >= 1 when use_symbol_partitioning is set")
	}

	if len(c.Bus.Brokers) == 0 {
		return errors.New("bus.brokers is required")
	}
	if c.Bus.GroupID == "" {
		return errors.New("bus.group_id is required")
	}

	if c.Archive.Enabled && c.Archive.DSN == "" && c.Archive.DB.Host == "" {
		return errors.New("archive.dsn or archive.db.host is required when archive.enabled is set")
	}
	if c.Archive.Enabled && c.Archive.BatchSize < 1 {
		return errors.New("archive.batch_size must be >= 1 when archive.enabled is set")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	if c.Pipeline.NumWorkers < 1 {
		return errors.New("pipeline.num_workers must be >= 1")
	}
	if c.Pipeline.NumPublishWorkers < 1 {
		return errors.New("pipeline.num_publish_workers must be >= 1")
	}
	if c.Pipeline.PublishQueueSize < 1 {
		return errors.New("pipeline.publish_queue_size must be >= 1")
	}
	if c.Pipeline.MaxRuntimeSeconds < 0 {
		return errors.New("pipeline.max_runtime_seconds must be >= 0 (0 = unlimited)")
	}

	return nil
}
