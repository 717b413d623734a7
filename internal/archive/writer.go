package archive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the batching settings.
// The pool itself is opened separately via internal/database.Connect;
// Writer only ever sees the *pgxpool.Pool.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

type record struct {
	MessageID   uuid.UUID
	Kind        string // "snapshot" or "cdc"
	Symbol      string
	Sequence    uint64
	Topic       string
	Payload     string
	PublishedAt time.Time
}

// Writer batches published snapshot/CDC payloads and flushes them to
// Postgres on a timer or when the batch fills, grounded on
// internal/writer/orderbook.go's batch/flush pattern.
type Writer struct {
	cfg    Config
	db     *pgxpool.Pool
	logger *slog.Logger

	mu    sync.Mutex
	batch []record

	flushTicker *time.Ticker
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	flushes int64
	errors  int64
}

// NewWriter constructs a Writer bound to db.
func NewWriter(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Writer{
		cfg:    cfg,
		db:     db,
		logger: logger,
		batch:  make([]record, 0, cfg.BatchSize),
	}
}

// Start begins the periodic flush loop.
func (w *Writer) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("archive writer started", "batch_size", w.cfg.BatchSize, "flush_interval", w.cfg.FlushInterval)
}

// Stop drains the flush loop and performs a final flush.
func (w *Writer) Stop(ctx context.Context) {
	w.logger.Info("stopping archive writer")
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
	}

	w.flush()
}

// Record enqueues one published message for archival, generating a
// fresh idempotency MessageID.
func (w *Writer) Record(kind, symbol string, sequence uint64, topic, payload string) {
	w.mu.Lock()
	w.batch = append(w.batch, record{
		MessageID:   uuid.New(),
		Kind:        kind,
		Symbol:      symbol,
		Sequence:    sequence,
		Topic:       topic,
		Payload:     payload,
		PublishedAt: time.Now(),
	})
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.mu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

func (w *Writer) flushLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	rows := w.batch
	w.batch = make([]record, 0, w.cfg.BatchSize)
	w.mu.Unlock()

	if len(rows) == 0 {
		return
	}

	start := time.Now()
	if err := w.insertBatch(rows); err != nil {
		w.logger.Error("archive batch insert failed", "error", err, "count", len(rows))
		atomic.AddInt64(&w.errors, 1)
		return
	}
	atomic.AddInt64(&w.flushes, 1)
	w.logger.Debug("archive flushed", "rows", len(rows), "duration", time.Since(start))
}

func (w *Writer) insertBatch(rows []record) error {
	ctx := context.Background()
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO published_messages (message_id, kind, symbol, sequence, topic, payload, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (message_id) DO NOTHING
		`, r.MessageID, r.Kind, r.Symbol, r.Sequence, r.Topic, r.Payload, r.PublishedAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Flushes returns the number of completed flush cycles.
func (w *Writer) Flushes() int64 { return atomic.LoadInt64(&w.flushes) }

// Errors returns the number of failed flush cycles.
func (w *Writer) Errors() int64 { return atomic.LoadInt64(&w.errors) }
