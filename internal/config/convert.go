package config

import (
	"time"

	"github.com/rickgao/marketdepth/internal/archive"
	"github.com/rickgao/marketdepth/internal/book"
	"github.com/rickgao/marketdepth/internal/bus"
	"github.com/rickgao/marketdepth/internal/codec"
	"github.com/rickgao/marketdepth/internal/database"
	"github.com/rickgao/marketdepth/internal/pipeline"
	"github.com/rickgao/marketdepth/internal/router"
)

// BookConfig projects the loaded Config onto book.Config.
func (c *Config) BookConfig() book.Config {
	return book.Config{
		EnableCDC:             c.DepthConfig.EnableCDC,
		MaxPriceLevelsPerSide: c.DepthConfig.MaxPriceLevels,
		ExchangeName:          c.JSONConfig.ExchangeName,
	}
}

// CodecConfig projects the loaded Config onto codec.Config.
func (c *Config) CodecConfig() codec.Config {
	return codec.Config{
		PriceDecimals:    c.JSONConfig.PriceDecimals,
		QuantityDecimals: c.JSONConfig.QuantityDecimals,
		IncludeTimestamp: c.JSONConfig.IncludeTimestamp,
		IncludeSequence:  c.JSONConfig.IncludeSequence,
		CompactFormat:    c.JSONConfig.CompactFormat,
		ExchangeName:     c.JSONConfig.ExchangeName,
	}
}

// RouterConfig projects the loaded Config onto router.Config.
func (c *Config) RouterConfig() router.Config {
	return router.Config{
		SnapshotTopicPrefix:   c.TopicConfig.SnapshotTopicPrefix,
		CDCTopic:              c.TopicConfig.CDCTopic,
		UseDepthInTopic:       c.TopicConfig.UseDepthInTopic,
		UseSymbolPartitioning: c.TopicConfig.UseSymbolPartitioning,
		NumPartitions:         c.TopicConfig.NumPartitions,
	}
}

// BusConfig projects the loaded Config onto bus.Config.
func (c *Config) BusConfig() bus.Config {
	return bus.Config{
		Brokers:        c.Bus.Brokers,
		GroupID:        c.Bus.GroupID,
		SessionTimeout: c.Bus.SessionTimeout,
		MaxRetries:     c.Bus.MaxRetries,
		RetryBackoff:   c.Bus.RetryBackoff,
	}
}

// DatabaseConfig projects the loaded Config's archive DSN/DB fields
// onto database.Config, the shape internal/database.Connect expects.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		DSN:      c.Archive.DSN,
		Host:     c.Archive.DB.Host,
		Port:     c.Archive.DB.Port,
		User:     c.Archive.DB.User,
		Password: c.Archive.DB.Password,
		Name:     c.Archive.DB.Name,
		SSLMode:  c.Archive.DB.SSLMode,
		MinConns: c.Archive.DB.MinConns,
		MaxConns: c.Archive.DB.MaxConns,
	}
}

// ArchiveConfig projects the loaded Config onto archive.Config.
func (c *Config) ArchiveConfig() archive.Config {
	return archive.Config{
		BatchSize:     c.Archive.BatchSize,
		FlushInterval: c.Archive.FlushInterval,
	}
}

func msDuration(ms int) time.Duration  { return time.Duration(ms) * time.Millisecond }
func secDuration(s int) time.Duration  { return time.Duration(s) * time.Second }

// PipelineConfig projects the loaded Config onto pipeline.Config.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		InputTopic:        c.Processor.InputTopic,
		PollTimeout:       msDuration(c.Processor.PollTimeoutMS),
		FlushInterval:     msDuration(c.Processor.FlushIntervalMS),
		StatsInterval:     secDuration(c.Processor.StatsIntervalS),
		NumWorkers:        c.Pipeline.NumWorkers,
		NumPublishWorkers: c.Pipeline.NumPublishWorkers,
		PublishQueueSize:  c.Pipeline.PublishQueueSize,
		MaxRuntimeSeconds: c.Pipeline.MaxRuntimeSeconds,
		DepthLevels:       c.DepthConfig.Levels,
		EnableSnapshots:   c.DepthConfig.EnableSnapshots,
	}
}
