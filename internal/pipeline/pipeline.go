package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/marketdepth/internal/archive"
	"github.com/rickgao/marketdepth/internal/book"
	"github.com/rickgao/marketdepth/internal/bus"
	"github.com/rickgao/marketdepth/internal/codec"
	"github.com/rickgao/marketdepth/internal/metrics"
	"github.com/rickgao/marketdepth/internal/model"
	"github.com/rickgao/marketdepth/internal/router"
)

// ConsumerFactory and ProducerFactory let Initialise construct the bus
// endpoints while still allowing tests to substitute fakes, grounded
// on the reference's "initialise() constructs consumer and producer"
// step.
type ConsumerFactory func(bus.Config, string, *slog.Logger) (bus.Consumer, error)
type ProducerFactory func(bus.Config, *slog.Logger) (bus.Producer, error)

func defaultConsumerFactory(cfg bus.Config, topic string, logger *slog.Logger) (bus.Consumer, error) {
	return bus.NewKafkaConsumer(cfg, topic, logger), nil
}

func defaultProducerFactory(cfg bus.Config, logger *slog.Logger) (bus.Producer, error) {
	return bus.NewKafkaProducer(cfg, logger), nil
}

// Deps bundles everything Initialise needs to wire the Pipeline's
// collaborators.
type Deps struct {
	BusConfig    bus.Config
	BookConfig   book.Config
	CodecConfig  codec.Config
	RouterConfig router.Config

	// Archive is optional; nil disables archival entirely.
	Archive *archive.Writer
	// Metrics is optional; a fresh PerformanceMetrics is created if nil.
	Metrics *metrics.PerformanceMetrics
	Logger  *slog.Logger

	NewConsumer ConsumerFactory
	NewProducer ProducerFactory
}

// Pipeline drives end-to-end processing. It owns the
// consumer handle, the producer handle, the Book Registry, the Codec,
// the Router, the metrics struct, and the shutdown signal.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger

	consumer bus.Consumer
	producer bus.Producer
	registry *book.Registry
	codec    *codec.Codec
	router   *router.Router
	perf     *metrics.PerformanceMetrics
	archive  *archive.Writer

	publishQueue *router.GrowableBuffer[outboundItem]

	// shardQueues holds one queue per worker. A symbol always hashes to
	// the same shard, so the shardLoop draining shardQueues[i] is the
	// only goroutine that ever touches the BookStates it owns.
	shardQueues []*router.GrowableBuffer[shardItem]

	mu      sync.Mutex
	state   RunState
	cancel  context.CancelFunc
	stopped chan struct{}
}

// outboundItem is one queued publish, carrying just enough alongside
// the RoutedMessage to also drive the optional archive record. The
// publisher goroutines are the sole callers of both.
type outboundItem struct {
	routed   router.RoutedMessage
	kind     string
	symbol   string
	sequence uint64
}

// shardItem is one decoded snapshot waiting for its owning shard to
// apply it to the registry.
type shardItem struct {
	env model.Envelope
}

// New constructs a Pipeline in the Created state.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, state: StateCreated}
}

// State reports the current lifecycle state.
func (p *Pipeline) State() RunState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Initialise constructs the consumer, producer, registry, codec and
// router, and subscribes the consumer to cfg.InputTopic. No partial
// state is retained if any step fails.
func (p *Pipeline) Initialise(deps Deps) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateCreated {
		return ErrAlreadyInitialised
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	consumerFactory := deps.NewConsumer
	if consumerFactory == nil {
		consumerFactory = defaultConsumerFactory
	}
	producerFactory := deps.NewProducer
	if producerFactory == nil {
		producerFactory = defaultProducerFactory
	}

	consumer, err := consumerFactory(deps.BusConfig, p.cfg.InputTopic, logger)
	if err != nil {
		return &InitError{Step: "consumer", Err: err}
	}
	producer, err := producerFactory(deps.BusConfig, logger)
	if err != nil {
		consumer.Close()
		return &InitError{Step: "producer", Err: err}
	}

	perf := deps.Metrics
	if perf == nil {
		perf = metrics.New(time.Now())
	}

	p.consumer = consumer
	p.producer = producer
	p.registry = book.NewRegistry(deps.BookConfig)
	p.codec = codec.New(deps.CodecConfig)
	p.router = router.New(deps.RouterConfig)
	p.perf = perf
	p.archive = deps.Archive
	p.logger = logger
	p.state = StateInitialised

	logger.Info("pipeline initialised",
		"input_topic", p.cfg.InputTopic,
		"num_workers", p.cfg.NumWorkers,
		"archive_enabled", p.archive != nil,
	)
	return nil
}

// Run enters the processing loop and blocks until ctx is cancelled,
// Stop is called, or (when MaxRuntimeSeconds > 0) the runtime cap
// elapses. It returns the first worker error, if any.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateInitialised {
		p.mu.Unlock()
		return ErrNotInitialised
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if p.cfg.MaxRuntimeSeconds > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.MaxRuntimeSeconds)*time.Second)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	p.cancel = cancel
	p.stopped = make(chan struct{})
	p.state = StateRunning
	numWorkers := p.cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	numPublishWorkers := p.cfg.NumPublishWorkers
	if numPublishWorkers < 1 {
		numPublishWorkers = 1
	}
	queueSize := p.cfg.PublishQueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	p.publishQueue = router.NewGrowableBuffer[outboundItem](queueSize)

	// One shard queue per worker. hash(symbol) % numWorkers decides
	// which shard a symbol's snapshots land on, and that assignment
	// never changes for the life of the run, so the shardLoop reading
	// shardQueues[i] is always the sole writer of the BookStates it
	// creates.
	p.shardQueues = make([]*router.GrowableBuffer[shardItem], numWorkers)
	for i := range p.shardQueues {
		p.shardQueues[i] = router.NewGrowableBuffer[shardItem](queueSize)
	}
	p.mu.Unlock()

	defer close(p.stopped)
	defer cancel()

	if p.archive != nil {
		p.archive.Start(runCtx)
	}

	var shardWG sync.WaitGroup
	shardWG.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		shardID := i
		go func() { defer shardWG.Done(); p.shardLoop(shardID) }()
	}

	// The publish queue absorbs bursts so a slow producer.Publish call
	// never blocks a shard goroutine mid-diff.
	var aux sync.WaitGroup
	aux.Add(2 + numPublishWorkers)
	go func() { defer aux.Done(); p.statsLoop(runCtx) }()
	go func() { defer aux.Done(); p.flushLoop(runCtx) }()
	for i := 0; i < numPublishWorkers; i++ {
		go func() { defer aux.Done(); p.publisherLoop(runCtx) }()
	}

	g, gCtx := errgroup.WithContext(runCtx)
	for i := 0; i < numWorkers; i++ {
		workerID := i
		g.Go(func() error {
			p.pollLoop(gCtx, workerID)
			return nil
		})
	}

	err := g.Wait()
	// Pollers have stopped dispatching; close the shard queues so the
	// shard goroutines drain whatever remains and exit instead of
	// blocking forever.
	for _, q := range p.shardQueues {
		q.Close()
	}
	shardWG.Wait()
	// Shards have stopped enqueueing; close the publish queue so
	// publishers drain the rest and exit too.
	p.publishQueue.Close()
	aux.Wait()

	p.mu.Lock()
	if p.state == StateRunning {
		p.state = StateStopping
	}
	p.mu.Unlock()

	return err
}

// Stop sets the shutdown flag, waits (bounded by ctx) for the worker
// and auxiliary goroutines to join, flushes the producer, and closes
// the consumer and producer.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateRunning && p.state != StateStopping {
		p.mu.Unlock()
		return nil
	}
	p.state = StateStopping
	cancel := p.cancel
	stopped := p.stopped
	p.mu.Unlock()

	p.logger.Info("stopping pipeline")
	if cancel != nil {
		cancel()
	}

	if stopped != nil {
		select {
		case <-stopped:
		case <-ctx.Done():
			p.logger.Warn("pipeline stop timed out waiting for workers")
		}
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), flushTimeout)
	defer flushCancel()
	if err := p.producer.Flush(flushCtx); err != nil {
		p.logger.Error("final producer flush failed", "error", err)
	}

	if p.archive != nil {
		p.archive.Stop(ctx)
	}
	if err := p.consumer.Close(); err != nil {
		p.logger.Error("consumer close failed", "error", err)
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error("producer close failed", "error", err)
	}

	p.mu.Lock()
	p.state = StateStopped
	p.mu.Unlock()
	p.logger.Info("pipeline stopped")
	return nil
}

// pollLoop polls the shared consumer and dispatches decoded snapshots
// to their owning shard. Multiple pollLoops may run concurrently
// against the same consumer; decoding is stateless, so the only shared
// mutable state they touch is the per-shard queue they hand off to.
func (p *Pipeline) pollLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := p.consumer.Poll(ctx, p.cfg.PollTimeout)
		if err != nil {
			p.perf.IncBusErrors()
			p.logger.Warn("consumer poll error", "worker", id, "error", err)
			continue
		}
		if msg == nil {
			continue
		}

		p.dispatch(msg)
	}
}

// dispatch decodes msg and, for order-book snapshots, hands it to the
// shard owning its symbol so every mutation of that symbol's BookState
// happens on exactly one goroutine.
func (p *Pipeline) dispatch(msg *bus.Message) {
	p.perf.IncMessagesConsumed()

	env, err := codec.Decode(msg.Value)
	if err != nil {
		p.logger.Warn("decode failed", "topic", msg.Topic, "error", err)
		p.perf.IncProcessingErrors()
		return
	}
	if env.Type != model.MsgOrderBookSnapshot {
		return
	}

	shard := router.HashSymbol(env.Snapshot.Symbol) % uint64(len(p.shardQueues))
	if !p.shardQueues[shard].Send(shardItem{env: env}) {
		p.logger.Warn("shard queue closed, dropping message", "symbol", env.Snapshot.Symbol)
	}
}

// shardLoop owns shardQueues[id] exclusively: every symbol hashes to
// exactly one shard for the life of the run, so this goroutine is the
// sole writer of every BookState it creates via registry.Process.
func (p *Pipeline) shardLoop(id int) {
	for {
		item, ok := p.shardQueues[id].Receive()
		if !ok {
			return
		}
		p.processSnapshot(item.env)
	}
}

// processSnapshot implements the per-message processing-loop steps:
// apply the snapshot to the registry, encode depth-limited snapshots
// and CDC events, and enqueue each for publish.
func (p *Pipeline) processSnapshot(env model.Envelope) {
	start := time.Now()

	events, err := p.registry.Process(env.Snapshot)
	if err != nil {
		p.logger.Warn("registry process failed", "symbol", env.Snapshot.Symbol, "error", err)
		p.perf.IncProcessingErrors()
		return
	}
	p.perf.IncMessagesProcessed()

	symbol := env.Snapshot.Symbol

	if p.cfg.EnableSnapshots {
		state := p.registry.GetOrCreate(symbol)
		snap := state.CurrentSnapshot()
		payloads, err := p.codec.MultiDepthSnapshots(snap, p.cfg.DepthLevels)
		if err != nil {
			p.logger.Warn("snapshot encode failed", "symbol", symbol, "error", err)
		} else {
			for depth, payload := range payloads {
				routed := p.router.RouteSnapshot(symbol, depth, payload)
				p.enqueuePublish(outboundItem{routed: routed, kind: "snapshot", symbol: symbol, sequence: snap.Sequence})
			}
		}
	}

	for _, ev := range events {
		payload, err := p.codec.CDCToJSON(ev)
		if err != nil {
			p.logger.Warn("cdc encode failed", "symbol", symbol, "error", err)
			continue
		}
		routed := p.router.RouteCDC(symbol, payload)
		p.enqueuePublish(outboundItem{routed: routed, kind: "cdc", symbol: symbol, sequence: ev.Sequence})
	}

	p.perf.UpdateProcessingTime(uint64(time.Since(start).Microseconds()))
}

// enqueuePublish hands routed to the backpressure buffer. A false
// return means the queue was already closed by shutdown; the message
// is dropped rather than blocking a worker against a stopped pipeline.
func (p *Pipeline) enqueuePublish(item outboundItem) {
	if !p.publishQueue.Send(item) {
		p.logger.Warn("publish queue closed, dropping message", "topic", item.routed.Topic, "symbol", item.symbol)
	}
}

// publisherLoop drains the backpressure queue and performs the actual
// bus publish plus optional archive record, one item at a time, until
// the queue is closed and drained on shutdown.
func (p *Pipeline) publisherLoop(ctx context.Context) {
	for {
		item, ok := p.publishQueue.Receive()
		if !ok {
			return
		}
		p.publish(ctx, item.routed)
		if p.archive != nil {
			p.archive.Record(item.kind, item.symbol, item.sequence, item.routed.Topic, item.routed.Payload)
		}
	}
}

func (p *Pipeline) publish(ctx context.Context, routed router.RoutedMessage) {
	err := p.producer.Publish(ctx, bus.OutboundMessage{
		Topic:     routed.Topic,
		Key:       routed.Key,
		Partition: routed.Partition,
		Value:     []byte(routed.Payload),
	})
	if err != nil {
		p.logger.Error("publish failed", "topic", routed.Topic, "key", routed.Key, "error", err)
		return
	}
	p.perf.IncMessagesPublished()
}

func (p *Pipeline) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := p.producer.Flush(flushCtx); err != nil {
				p.logger.Warn("periodic flush failed", "error", err)
			}
			cancel()
		}
	}
}

func (p *Pipeline) statsLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.reportStats()
		}
	}
}

// reportStats emits the structured statistics line the statistics
// thread produces: counters, rates, latency min/avg/max,
// active symbol count, top-N symbols by message count.
func (p *Pipeline) reportStats() {
	now := time.Now()
	snap := p.perf.Snapshot(now)
	agg := p.registry.AggregateStats()
	symbols := p.registry.TrackedSymbols()

	p.logger.Info("pipeline stats",
		"messages_consumed", snap.MessagesConsumed,
		"messages_processed", snap.MessagesProcessed,
		"messages_published", snap.MessagesPublished,
		"processing_errors", snap.ProcessingErrors,
		"bus_errors", snap.BusErrors,
		"stale_sequences", agg.StaleSequencesObserved,
		"truncated_levels", agg.TruncatedLevelsObserved,
		"avg_processing_micros", snap.AverageProcessingTimeMicros(),
		"min_processing_micros", snap.MinProcessingTimeMicros,
		"max_processing_micros", snap.MaxProcessingTimeMicros,
		"active_symbols", len(symbols),
		"top_symbols", topSymbolsByCount(agg.SymbolMessageCounts, 5),
		"uptime_seconds", snap.UptimeSeconds,
	)
}

func topSymbolsByCount(counts map[string]uint64, n int) []string {
	type pair struct {
		symbol string
		count  uint64
	}
	pairs := make([]pair, 0, len(counts))
	for sym, c := range counts {
		pairs = append(pairs, pair{sym, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].symbol < pairs[j].symbol
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = pairs[i].symbol
	}
	return top
}
