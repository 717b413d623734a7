package codec

import (
	"encoding/json"
	"testing"

	"github.com/rickgao/marketdepth/internal/book"
)

func TestSnapshotToJSON_SufficientDepth(t *testing.T) {
	snap := book.Snapshot{
		Symbol:   "ABC",
		Sequence: 2,
		BidLevels: []book.PriceLevel{
			{Price: 1000000, Quantity: 10, NumOrders: 1},
			{Price: 999000, Quantity: 10, NumOrders: 1},
			{Price: 998000, Quantity: 10, NumOrders: 1},
			{Price: 997000, Quantity: 10, NumOrders: 1},
			{Price: 996000, Quantity: 10, NumOrders: 1},
		},
		AskLevels: []book.PriceLevel{
			{Price: 1010000, Quantity: 20, NumOrders: 1},
			{Price: 1011000, Quantity: 20, NumOrders: 1},
			{Price: 1012000, Quantity: 20, NumOrders: 1},
			{Price: 1013000, Quantity: 20, NumOrders: 1},
			{Price: 1014000, Quantity: 20, NumOrders: 1},
		},
	}

	c := New(DefaultConfig())
	payload, err := c.SnapshotToJSON(snap, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("emitted payload did not parse as JSON: %v", err)
	}

	bids, _ := decoded["bids"].([]any)
	asks, _ := decoded["asks"].([]any)
	if len(bids) != 5 || len(asks) != 5 {
		t.Fatalf("expected 5 bids and 5 asks, got %d/%d", len(bids), len(asks))
	}
	if got := bids[0].(map[string]any)["price"]; got != "100.0000" {
		t.Fatalf("expected bids[0].price == 100.0000, got %v", got)
	}
	if got := asks[0].(map[string]any)["price"]; got != "101.0000" {
		t.Fatalf("expected asks[0].price == 101.0000, got %v", got)
	}

	stats := decoded["market_stats"].(map[string]any)
	if stats["spread"] != "1.0000" {
		t.Fatalf("expected spread 1.0000, got %v", stats["spread"])
	}
	if stats["mid_price"] != "100.5000" {
		t.Fatalf("expected mid_price 100.5000, got %v", stats["mid_price"])
	}
	if stats["has_sufficient_depth"] != true {
		t.Fatalf("expected has_sufficient_depth true, got %v", stats["has_sufficient_depth"])
	}
}

func TestSnapshotToJSON_InsufficientDepthIsNotAnError(t *testing.T) {
	snap := book.Snapshot{
		Symbol:    "ABC",
		Sequence:  1,
		BidLevels: []book.PriceLevel{{Price: 1000000, Quantity: 100, NumOrders: 1}},
		AskLevels: []book.PriceLevel{{Price: 1010000, Quantity: 50, NumOrders: 1}},
	}
	c := New(DefaultConfig())
	result, err := c.MultiDepthSnapshots(snap, []int{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected depth 5 to be omitted for insufficient depth, got %+v", result)
	}
}

func TestMultiDepthSnapshots_OmitsUnmetDepthsOnly(t *testing.T) {
	bids := make([]book.PriceLevel, 10)
	asks := make([]book.PriceLevel, 3)
	for i := range bids {
		bids[i] = book.PriceLevel{Price: uint64(1000000 - i*1000), Quantity: 1, NumOrders: 1}
	}
	for i := range asks {
		asks[i] = book.PriceLevel{Price: uint64(1010000 + i*1000), Quantity: 1, NumOrders: 1}
	}
	snap := book.Snapshot{Symbol: "ABC", Sequence: 1, BidLevels: bids, AskLevels: asks}

	c := New(DefaultConfig())
	result, err := c.MultiDepthSnapshots(snap, []int{3, 5, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result[3]; !ok {
		t.Fatalf("expected depth 3 to be kept: 10 bid and 3 ask levels available")
	}
	if _, ok := result[5]; ok {
		t.Fatalf("expected depth 5 to be omitted: only 3 ask levels available")
	}
	if _, ok := result[10]; ok {
		t.Fatalf("expected depth 10 to be omitted: only 3 ask levels available")
	}
}

func TestCDCToJSON(t *testing.T) {
	event := book.CDCEvent{
		Symbol:          "ABC",
		Side:            book.Buy,
		Kind:            book.LevelModified,
		Level:           book.PriceLevel{Price: 1000000, Quantity: 15, NumOrders: 1},
		Sequence:        3,
		TimestampMicros: 1_700_000_000_000_000,
	}
	c := New(DefaultConfig())
	payload, err := c.CDCToJSON(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("emitted CDC payload did not parse: %v", err)
	}
	if decoded["event_type"] != "level_modified" {
		t.Fatalf("expected event_type level_modified, got %v", decoded["event_type"])
	}
	if decoded["side"] != "bid" {
		t.Fatalf("expected side bid, got %v", decoded["side"])
	}
	level := decoded["level"].(map[string]any)
	if level["price"] != "100.0000" || level["quantity"] != "0.15" {
		t.Fatalf("unexpected level payload: %+v", level)
	}
}

func TestFormatScaled(t *testing.T) {
	cases := []struct {
		value    uint64
		decimals int
		want     string
	}{
		{1234567, 4, "123.4567"},
		{100, 2, "1.00"},
		{5, 2, "0.05"},
		{0, 4, "0.0000"},
		{100, 0, "100"},
	}
	for _, c := range cases {
		if got := formatScaled(c.value, c.decimals); got != c.want {
			t.Errorf("formatScaled(%d, %d) = %q, want %q", c.value, c.decimals, got, c.want)
		}
	}
}
