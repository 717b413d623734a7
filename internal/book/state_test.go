package book

import (
	"testing"
	"time"

	"github.com/rickgao/marketdepth/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func level(price, qty uint64) model.Level {
	return model.Level{Price: price, Orders: []model.Order{{Qty: qty}}}
}

func newTestState(symbol string, cfg Config) *State {
	s := newState(symbol, cfg)
	s.now = fixedClock(time.Unix(1000, 0))
	return s
}

func TestProcess_FirstSnapshotEmitsNoCDC(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())

	events, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     1,
		BuySide: []model.Level{level(100, 10)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no CDC events on first snapshot, got %d", len(events))
	}
	if !s.IsInitialised() {
		t.Fatalf("expected state to be initialised after first snapshot")
	}
}

func TestProcess_UnchangedSnapshotEmitsNoEvents(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	snap := model.DecodedSnapshot{
		Symbol:   "AAPL",
		Seq:      1,
		BuySide:  []model.Level{level(100, 10)},
		SellSide: []model.Level{level(101, 5)},
	}
	if _, err := s.Process(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap.Seq = 2
	events, err := s.Process(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected zero events for a repeated snapshot, got %d: %+v", len(events), events)
	}
}

func TestProcess_LevelModification(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     1,
		BuySide: []model.Level{level(100, 10)},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     2,
		BuySide: []model.Level{level(100, 25)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 CDC event, got %d: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Kind != LevelModified || ev.Side != Buy || ev.Level.Quantity != 25 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Symbol != "AAPL" {
		t.Fatalf("expected event symbol to be set, got %q", ev.Symbol)
	}
}

func TestProcess_LevelRemovalAndAddition(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     1,
		BuySide: []model.Level{level(100, 10), level(99, 5)},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     2,
		BuySide: []model.Level{level(100, 10), level(98, 3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 CDC events (1 removed, 1 added), got %d: %+v", len(events), events)
	}

	var sawRemoved, sawAdded bool
	for _, ev := range events {
		switch {
		case ev.Kind == LevelRemoved && ev.Level.Price == 99:
			sawRemoved = true
		case ev.Kind == LevelAdded && ev.Level.Price == 98:
			sawAdded = true
		}
	}
	if !sawRemoved || !sawAdded {
		t.Fatalf("expected a removal of 99 and addition of 98, got %+v", events)
	}
}

func TestProcess_EmptySymbolIsMalformed(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{Symbol: ""}); err != ErrDecodeMalformed {
		t.Fatalf("expected ErrDecodeMalformed, got %v", err)
	}
}

func TestProcess_SymbolMismatch(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{Symbol: "MSFT"}); err != ErrSymbolMismatch {
		t.Fatalf("expected ErrSymbolMismatch, got %v", err)
	}
}

func TestProcess_StaleSequenceIsAdvisoryOnly(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{Symbol: "AAPL", Seq: 5, BuySide: []model.Level{level(100, 1)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Process(model.DecodedSnapshot{Symbol: "AAPL", Seq: 3, BuySide: []model.Level{level(100, 1)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.staleSequences != 1 {
		t.Fatalf("expected 1 stale sequence observed, got %d", s.staleSequences)
	}
}

func TestProcess_ZeroPriceLevelsAreSkipped(t *testing.T) {
	s := newTestState("AAPL", DefaultConfig())
	if _, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     1,
		BuySide: []model.Level{level(0, 10), level(100, 5)},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := s.CurrentSnapshot()
	if len(snap.BidLevels) != 1 || snap.BidLevels[0].Price != 100 {
		t.Fatalf("expected zero-price level to be dropped, got %+v", snap.BidLevels)
	}
}

func TestProcess_TruncatesAtMaxLevels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPriceLevelsPerSide = 1
	s := newTestState("AAPL", cfg)
	if _, err := s.Process(model.DecodedSnapshot{
		Symbol:  "AAPL",
		Seq:     1,
		BuySide: []model.Level{level(100, 10), level(99, 5)},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := s.CurrentSnapshot()
	if len(snap.BidLevels) != 1 {
		t.Fatalf("expected truncation to 1 level, got %d", len(snap.BidLevels))
	}
	if s.truncatedLevels != 1 {
		t.Fatalf("expected truncatedLevels counter to increment, got %d", s.truncatedLevels)
	}
}

func TestProcess_CDCDisabledNeverEmitsEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableCDC = false
	s := newTestState("AAPL", cfg)
	if _, err := s.Process(model.DecodedSnapshot{Symbol: "AAPL", Seq: 1, BuySide: []model.Level{level(100, 1)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events, err := s.Process(model.DecodedSnapshot{Symbol: "AAPL", Seq: 2, BuySide: []model.Level{level(100, 99)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no CDC events when disabled, got %d", len(events))
	}
}
