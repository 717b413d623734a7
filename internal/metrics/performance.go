package metrics

import (
	"sync/atomic"
	"time"
)

// PerformanceMetrics is the Pipeline's atomic counter block, grounded
// on MarketDepthProcessor.hpp::PerformanceMetrics. Every field is
// updated with atomic operations so any worker goroutine can record
// against it without a mutex.
type PerformanceMetrics struct {
	messagesConsumed  uint64
	messagesProcessed uint64
	messagesPublished uint64
	processingErrors  uint64
	busErrors         uint64

	totalProcessingTimeMicros uint64
	maxProcessingTimeMicros   uint64
	minProcessingTimeMicros   uint64
	processingTimeSamples     uint64

	startTime time.Time
}

// New constructs a PerformanceMetrics with its min-processing-time
// watermark initialised to the maximum representable value, matching
// the reference's UINT64_MAX seed; any real sample will be lower.
func New(now time.Time) *PerformanceMetrics {
	return &PerformanceMetrics{
		minProcessingTimeMicros: ^uint64(0),
		startTime:               now,
	}
}

func (m *PerformanceMetrics) IncMessagesConsumed()  { atomic.AddUint64(&m.messagesConsumed, 1) }
func (m *PerformanceMetrics) IncMessagesProcessed() { atomic.AddUint64(&m.messagesProcessed, 1) }
func (m *PerformanceMetrics) IncMessagesPublished() { atomic.AddUint64(&m.messagesPublished, 1) }
func (m *PerformanceMetrics) IncProcessingErrors()  { atomic.AddUint64(&m.processingErrors, 1) }
func (m *PerformanceMetrics) IncBusErrors()         { atomic.AddUint64(&m.busErrors, 1) }

// UpdateProcessingTime folds one observed duration (in microseconds)
// into the running total/min/max, using a CAS retry loop for the
// monotone min and max exactly as the reference implementation does.
func (m *PerformanceMetrics) UpdateProcessingTime(micros uint64) {
	atomic.AddUint64(&m.totalProcessingTimeMicros, micros)
	atomic.AddUint64(&m.processingTimeSamples, 1)

	for {
		current := atomic.LoadUint64(&m.maxProcessingTimeMicros)
		if micros <= current {
			break
		}
		if atomic.CompareAndSwapUint64(&m.maxProcessingTimeMicros, current, micros) {
			break
		}
	}

	for {
		current := atomic.LoadUint64(&m.minProcessingTimeMicros)
		if micros >= current {
			break
		}
		if atomic.CompareAndSwapUint64(&m.minProcessingTimeMicros, current, micros) {
			break
		}
	}
}

// Snapshot is a point-in-time copy of the counters, suitable for a
// structured statistics log line or a Prometheus collector callback.
type Snapshot struct {
	MessagesConsumed  uint64
	MessagesProcessed uint64
	MessagesPublished uint64
	ProcessingErrors  uint64
	BusErrors         uint64

	TotalProcessingTimeMicros uint64
	MaxProcessingTimeMicros   uint64
	MinProcessingTimeMicros   uint64
	ProcessingTimeSamples     uint64

	UptimeSeconds float64
}

// Snapshot reads every counter with an atomic load.
func (m *PerformanceMetrics) Snapshot(now time.Time) Snapshot {
	minMicros := atomic.LoadUint64(&m.minProcessingTimeMicros)
	if minMicros == ^uint64(0) {
		minMicros = 0
	}
	return Snapshot{
		MessagesConsumed:          atomic.LoadUint64(&m.messagesConsumed),
		MessagesProcessed:         atomic.LoadUint64(&m.messagesProcessed),
		MessagesPublished:         atomic.LoadUint64(&m.messagesPublished),
		ProcessingErrors:          atomic.LoadUint64(&m.processingErrors),
		BusErrors:                 atomic.LoadUint64(&m.busErrors),
		TotalProcessingTimeMicros: atomic.LoadUint64(&m.totalProcessingTimeMicros),
		MaxProcessingTimeMicros:   atomic.LoadUint64(&m.maxProcessingTimeMicros),
		MinProcessingTimeMicros:   minMicros,
		ProcessingTimeSamples:     atomic.LoadUint64(&m.processingTimeSamples),
		UptimeSeconds:             now.Sub(m.startTime).Seconds(),
	}
}

// AverageProcessingTimeMicros returns the mean processing latency, or
// 0 if no samples have been recorded.
func (s Snapshot) AverageProcessingTimeMicros() float64 {
	if s.ProcessingTimeSamples == 0 {
		return 0
	}
	return float64(s.TotalProcessingTimeMicros) / float64(s.ProcessingTimeSamples)
}
