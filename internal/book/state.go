package book

import (
	"sort"
	"time"

	"github.com/rickgao/marketdepth/internal/model"
)

// Config holds per-process book-state settings, minus the depth-levels
// list which belongs to the codec/router layer.
type Config struct {
	EnableCDC             bool
	MaxPriceLevelsPerSide int
	ExchangeName          string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableCDC:             true,
		MaxPriceLevelsPerSide: 100,
		ExchangeName:          "CXA",
	}
}

// State is the per-symbol state holder: the current and previous
// normalised snapshots plus the counters used for aggregate
// statistics. A State is mutated only by the goroutine currently
// dispatching that symbol's snapshot; Registry only arbitrates
// creation.
type State struct {
	symbol string
	cfg    Config
	now    func() time.Time

	current      Snapshot
	previous     Snapshot
	messageCount uint64
	initialised  bool

	staleSequences  uint64
	truncatedLevels uint64
}

// newState constructs a State for symbol. Unexported: callers go
// through Registry.GetOrCreate.
func newState(symbol string, cfg Config) *State {
	return &State{
		symbol:   symbol,
		cfg:      cfg,
		now:      time.Now,
		current:  Snapshot{Symbol: symbol},
		previous: Snapshot{Symbol: symbol},
	}
}

// CurrentSnapshot returns a copy of the current Snapshot.
func (s *State) CurrentSnapshot() Snapshot { return s.current }

// MessageCount returns the number of snapshots successfully processed.
func (s *State) MessageCount() uint64 { return s.messageCount }

// LastSequence returns the most recently accepted sequence number.
func (s *State) LastSequence() uint64 { return s.current.Sequence }

// IsInitialised reports whether at least one snapshot has been processed.
func (s *State) IsInitialised() bool { return s.initialised }

// Process ingests a decoded snapshot, rebuilds current from it, and
// returns the CDC events derived against the prior state. CDC is only
// ever non-empty when EnableCDC is set and the State was already
// initialised on entry: the first snapshot for a symbol never
// produces CDC events, since there is no prior state to diff against.
func (s *State) Process(decoded model.DecodedSnapshot) ([]CDCEvent, error) {
	if decoded.Symbol == "" {
		return nil, ErrDecodeMalformed
	}
	if decoded.Symbol != s.symbol {
		return nil, ErrSymbolMismatch
	}

	if decoded.Seq <= s.current.Sequence && s.initialised {
		s.staleSequences++
	}

	wasInitialised := s.initialised
	previous := s.current

	maxLevels := s.cfg.MaxPriceLevelsPerSide
	if maxLevels <= 0 {
		maxLevels = len(decoded.BuySide) + len(decoded.SellSide) + 1
	}

	bids, truncatedBids := buildLevels(decoded.BuySide, maxLevels, s.cfg.ExchangeName, Buy)
	asks, truncatedAsks := buildLevels(decoded.SellSide, maxLevels, s.cfg.ExchangeName, Sell)
	if truncatedBids || truncatedAsks {
		s.truncatedLevels++
	}

	current := Snapshot{
		Symbol:            s.symbol,
		Sequence:          decoded.Seq,
		TimestampMicros:   s.now().UnixMicro(),
		BidLevels:         bids,
		AskLevels:         asks,
		LastTradePrice:     decoded.RecentTradePrice,
		LastTradeQuantity:  decoded.RecentTradeQty,
	}

	var events []CDCEvent
	if s.cfg.EnableCDC && wasInitialised {
		events = diffSides(previous, current, s.symbol, decoded.Seq, current.TimestampMicros)
	}

	s.previous = previous
	s.current = current
	s.messageCount++
	s.initialised = true

	return events, nil
}

// buildLevels normalises a wire-order level list into a strictly
// ordered, duplicate-free PriceLevel slice: descending by price for
// the buy side, ascending for the sell side, at most one entry per
// price (a later entry for the same price replaces the earlier one),
// truncated to maxLevels. A level with price 0 is skipped, as it
// carries no tradeable size. This reproduces the ordered-map
// normalisation the reference book keeps per side, since the wire
// itself makes no ordering or uniqueness guarantee.
func buildLevels(levels []model.Level, maxLevels int, exchange string, side Side) ([]PriceLevel, bool) {
	byPrice := make(map[uint64]PriceLevel, len(levels))
	prices := make([]uint64, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Price == 0 {
			continue
		}
		var qty uint64
		for _, o := range lvl.Orders {
			qty += o.Qty
		}
		if _, seen := byPrice[lvl.Price]; !seen {
			prices = append(prices, lvl.Price)
		}
		byPrice[lvl.Price] = PriceLevel{
			Price:     lvl.Price,
			Quantity:  qty,
			NumOrders: uint32(len(lvl.Orders)),
			Exchanges: []string{exchange},
		}
	}

	if side == Buy {
		sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	} else {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	}

	truncated := len(prices) > maxLevels
	if truncated {
		prices = prices[:maxLevels]
	}

	out := make([]PriceLevel, len(prices))
	for i, p := range prices {
		out[i] = byPrice[p]
	}
	return out, truncated
}

// diffSides runs the level-diff algorithm on both sides, in a fixed
// order: buy removals, buy adds/modifies, sell removals, sell
// adds/modifies.
func diffSides(previous, current Snapshot, symbol string, seq uint64, ts int64) []CDCEvent {
	var events []CDCEvent
	events = append(events, diffSide(previous.BidLevels, current.BidLevels, Buy, symbol, seq, ts)...)
	events = append(events, diffSide(previous.AskLevels, current.AskLevels, Sell, symbol, seq, ts)...)
	return events
}

// diffSide emits Removed events for prices present only in old, then
// Added/Modified events for prices in new, each in new's natural
// order (descending for bids, ascending for asks, since callers pass
// already-ordered slices and iterating in slice order suffices).
func diffSide(oldLevels, newLevels []PriceLevel, side Side, symbol string, seq uint64, ts int64) []CDCEvent {
	oldIdx := index(oldLevels)
	newIdx := index(newLevels)

	var events []CDCEvent
	for _, old := range oldLevels {
		if _, ok := newIdx[old.Price]; !ok {
			events = append(events, CDCEvent{Symbol: symbol, Side: side, Kind: LevelRemoved, Level: old, Sequence: seq, TimestampMicros: ts})
		}
	}
	for _, n := range newLevels {
		old, ok := oldIdx[n.Price]
		switch {
		case !ok:
			events = append(events, CDCEvent{Symbol: symbol, Side: side, Kind: LevelAdded, Level: n, Sequence: seq, TimestampMicros: ts})
		case !old.Equal(n):
			events = append(events, CDCEvent{Symbol: symbol, Side: side, Kind: LevelModified, Level: n, Sequence: seq, TimestampMicros: ts})
		}
	}
	return events
}
