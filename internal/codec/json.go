package codec

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rickgao/marketdepth/internal/book"
)

// Config holds the per-process JSON formatting settings.
type Config struct {
	PriceDecimals    int
	QuantityDecimals int
	IncludeTimestamp bool
	IncludeSequence  bool
	CompactFormat    bool
	ExchangeName     string
}

// DefaultConfig mirrors the reference MessageFactory::JsonConfig
// defaults (original_source/src/MessageFactory.cpp).
func DefaultConfig() Config {
	return Config{
		PriceDecimals:    4,
		QuantityDecimals: 2,
		IncludeTimestamp: true,
		IncludeSequence:  true,
		CompactFormat:    false,
		ExchangeName:     "CXA",
	}
}

// Codec formats book.Snapshot / book.CDCEvent values as the JSON
// documents downstream depth consumers expect.
type Codec struct {
	cfg Config
}

// New constructs a Codec bound to cfg.
func New(cfg Config) *Codec {
	return &Codec{cfg: cfg}
}

type priceLevelJSON struct {
	Symbol         string   `json:"symbol"`
	Side           string   `json:"side"`
	Price          string   `json:"price"`
	Quantity       string   `json:"quantity"`
	NumberOfOrders uint32   `json:"number_of_orders"`
	Exchanges      []string `json:"exchanges"`
}

type lastTradeJSON struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type marketStatsJSON struct {
	TotalBidLevels     int    `json:"total_bid_levels"`
	TotalAskLevels     int    `json:"total_ask_levels"`
	HasSufficientDepth bool   `json:"has_sufficient_depth"`
	Spread             string `json:"spread,omitempty"`
	MidPrice           string `json:"mid_price,omitempty"`
}

type snapshotJSON struct {
	Symbol       string           `json:"symbol"`
	Sequence     *uint64          `json:"sequence,omitempty"`
	Timestamp    *int64           `json:"timestamp,omitempty"`
	TimestampISO string           `json:"timestamp_iso,omitempty"`
	MessageType  string           `json:"message_type"`
	Depth        int              `json:"depth"`
	Bids         []priceLevelJSON `json:"bids"`
	Asks         []priceLevelJSON `json:"asks"`
	LastTrade    *lastTradeJSON   `json:"last_trade,omitempty"`
	MarketStats  marketStatsJSON  `json:"market_stats"`
}

type cdcJSON struct {
	Symbol       string         `json:"symbol"`
	Sequence     *uint64        `json:"sequence,omitempty"`
	Timestamp    *int64         `json:"timestamp,omitempty"`
	TimestampISO string         `json:"timestamp_iso,omitempty"`
	MessageType  string         `json:"message_type"`
	EventType    string         `json:"event_type"`
	Side         string         `json:"side"`
	Level        priceLevelJSON `json:"level"`
}

// SnapshotToJSON renders snap as a depth-limited JSON object, keeping
// only the top depth entries on each side.
func (c *Codec) SnapshotToJSON(snap book.Snapshot, depth int) (string, error) {
	bids := topLevels(snap.BidLevels, depth)
	asks := topLevels(snap.AskLevels, depth)

	doc := snapshotJSON{
		Symbol:      snap.Symbol,
		MessageType: "snapshot",
		Depth:       depth,
		Bids:        c.levelsToJSON(bids, book.Buy, snap.Symbol),
		Asks:        c.levelsToJSON(asks, book.Sell, snap.Symbol),
		MarketStats: c.marketStats(snap, depth, bids, asks),
	}
	c.addCommonFields(&doc.Sequence, &doc.Timestamp, &doc.TimestampISO, snap.Sequence, snap.TimestampMicros)

	if snap.LastTradePrice > 0 {
		doc.LastTrade = &lastTradeJSON{
			Price:    c.formatPrice(snap.LastTradePrice),
			Quantity: c.formatQuantity(snap.LastTradeQuantity),
		}
	}

	return c.marshal(doc)
}

// CDCToJSON renders event as a single level-delta JSON object.
func (c *Codec) CDCToJSON(event book.CDCEvent) (string, error) {
	doc := cdcJSON{
		Symbol:      event.Symbol,
		MessageType: "cdc",
		EventType:   event.Kind.String(),
		Side:        event.Side.String(),
		Level:       c.levelToJSON(event.Level, event.Side, event.Symbol),
	}
	c.addCommonFields(&doc.Sequence, &doc.Timestamp, &doc.TimestampISO, event.Sequence, event.TimestampMicros)

	return c.marshal(doc)
}

// MultiDepthSnapshots produces one JSON document per depth in depths
// for which snap has at least `depth` levels on both sides; depths
// with insufficient data are omitted rather than padded.
func (c *Codec) MultiDepthSnapshots(snap book.Snapshot, depths []int) (map[int]string, error) {
	result := make(map[int]string)
	for _, depth := range depths {
		if len(snap.BidLevels) < depth || len(snap.AskLevels) < depth {
			continue
		}
		payload, err := c.SnapshotToJSON(snap, depth)
		if err != nil {
			return nil, err
		}
		result[depth] = payload
	}
	return result, nil
}

func (c *Codec) addCommonFields(seq **uint64, ts **int64, tsISO *string, sequence uint64, timestampMicros int64) {
	if c.cfg.IncludeSequence {
		v := sequence
		*seq = &v
	}
	if c.cfg.IncludeTimestamp {
		v := timestampMicros
		*ts = &v
		*tsISO = formatTimestampISO(timestampMicros)
	}
}

func (c *Codec) marketStats(snap book.Snapshot, depth int, topBids, topAsks []book.PriceLevel) marketStatsJSON {
	stats := marketStatsJSON{
		TotalBidLevels:     len(snap.BidLevels),
		TotalAskLevels:     len(snap.AskLevels),
		HasSufficientDepth: len(snap.BidLevels) >= depth && len(snap.AskLevels) >= depth,
	}
	if len(topBids) > 0 && len(topAsks) > 0 {
		bestBid, bestAsk := topBids[0].Price, topAsks[0].Price
		// Spread is always best ask minus best bid; mid price is their
		// average. Kept mathematically consistent with each other rather
		// than independently rounded.
		stats.Spread = c.formatPrice(bestAsk - bestBid)
		stats.MidPrice = c.formatPrice((bestAsk + bestBid) / 2)
	}
	return stats
}

func (c *Codec) levelsToJSON(levels []book.PriceLevel, side book.Side, symbol string) []priceLevelJSON {
	out := make([]priceLevelJSON, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, c.levelToJSON(lvl, side, symbol))
	}
	return out
}

func (c *Codec) levelToJSON(lvl book.PriceLevel, side book.Side, symbol string) priceLevelJSON {
	exchanges := lvl.Exchanges
	if len(exchanges) == 0 {
		exchanges = []string{c.cfg.ExchangeName}
	}
	return priceLevelJSON{
		Symbol:         symbol,
		Side:           side.String(),
		Price:          c.formatPrice(lvl.Price),
		Quantity:       c.formatQuantity(lvl.Quantity),
		NumberOfOrders: lvl.NumOrders,
		Exchanges:      exchanges,
	}
}

func (c *Codec) marshal(v any) (string, error) {
	if c.cfg.CompactFormat {
		b, err := json.Marshal(v)
		return string(b), err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	return string(b), err
}

func (c *Codec) formatPrice(scaled uint64) string {
	return formatScaled(scaled, c.cfg.PriceDecimals)
}

func (c *Codec) formatQuantity(scaled uint64) string {
	return formatScaled(scaled, c.cfg.QuantityDecimals)
}

func topLevels(levels []book.PriceLevel, depth int) []book.PriceLevel {
	if depth >= len(levels) {
		return levels
	}
	return levels[:depth]
}

// formatScaled renders a scaled integer as a fixed-point decimal
// string with exactly decimals fractional digits, working entirely in
// integer arithmetic so large scaled values never lose precision the
// way a float64 round-trip through format_price would.
func formatScaled(value uint64, decimals int) string {
	if decimals <= 0 {
		return itoa(value)
	}
	digits := itoa(value)
	for len(digits) <= decimals {
		digits = "0" + digits
	}
	split := len(digits) - decimals
	var b strings.Builder
	b.WriteString(digits[:split])
	b.WriteByte('.')
	b.WriteString(digits[split:])
	return b.String()
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func formatTimestampISO(micros int64) string {
	return time.UnixMicro(micros).UTC().Format("2006-01-02T15:04:05.000Z")
}
