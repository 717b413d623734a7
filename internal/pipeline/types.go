package pipeline

import "time"

// Config holds the loop-timing and worker-pool settings.
type Config struct {
	InputTopic        string
	PollTimeout       time.Duration
	FlushInterval     time.Duration
	StatsInterval     time.Duration
	NumWorkers        int
	NumPublishWorkers int
	PublishQueueSize  int
	MaxRuntimeSeconds int
	DepthLevels       []int
	EnableSnapshots   bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		InputTopic:        "market_depth_ingress",
		PollTimeout:       100 * time.Millisecond,
		FlushInterval:     time.Second,
		StatsInterval:     30 * time.Second,
		NumWorkers:        4,
		NumPublishWorkers: 2,
		PublishQueueSize:  1024,
		DepthLevels:       []int{5, 10, 25, 50},
		EnableSnapshots:   true,
	}
}

// flushTimeout bounds every producer flush call.
const flushTimeout = 100 * time.Millisecond
