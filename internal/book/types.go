package book

// Side identifies which side of the book a PriceLevel or CDCEvent
// belongs to.
type Side uint8

const (
	Buy Side = iota
	Sell
)

// String renders the side the way the wire/JSON layer expects.
func (s Side) String() string {
	if s == Sell {
		return "ask"
	}
	return "bid"
}

// PriceLevel is one aggregated level on one side of the book.
type PriceLevel struct {
	Price        uint64
	Quantity     uint64
	NumOrders    uint32
	Exchanges    []string
}

// Equal reports componentwise equality of price, quantity and order
// count, the comparison the CDC diff uses to detect a modification.
// Exchanges are deliberately excluded: the diff algorithm keys off
// price/quantity/number_of_orders only.
func (p PriceLevel) Equal(o PriceLevel) bool {
	return p.Price == o.Price && p.Quantity == o.Quantity && p.NumOrders == o.NumOrders
}

// Snapshot is the normalised book state for one symbol at one sequence.
//
// BidLevels/AskLevels are ordered slices (descending/ascending by
// price respectively) rather than maps: strict iteration order and no
// duplicate prices on either side are required, and a slice kept in
// order at construction time gives both for free without a second
// sort pass on every read.
type Snapshot struct {
	Symbol             string
	Sequence           uint64
	TimestampMicros    int64
	BidLevels          []PriceLevel
	AskLevels          []PriceLevel
	LastTradePrice     uint64
	LastTradeQuantity  uint64
}

// index builds a price->PriceLevel lookup for diffing.
func index(levels []PriceLevel) map[uint64]PriceLevel {
	m := make(map[uint64]PriceLevel, len(levels))
	for _, l := range levels {
		m[l.Price] = l
	}
	return m
}

// CDCEventType enumerates the kinds of level delta the diff emits.
type CDCEventType uint8

const (
	LevelAdded CDCEventType = iota
	LevelModified
	LevelRemoved
	BookCleared
)

// String renders the event type the way the wire/JSON layer expects.
func (t CDCEventType) String() string {
	switch t {
	case LevelAdded:
		return "level_added"
	case LevelModified:
		return "level_modified"
	case LevelRemoved:
		return "level_removed"
	case BookCleared:
		return "book_cleared"
	default:
		return "unknown"
	}
}

// CDCEvent is one level-delta between successive Snapshots of the same
// symbol.
type CDCEvent struct {
	Symbol          string
	Side            Side
	Kind            CDCEventType
	Level           PriceLevel
	Sequence        uint64
	TimestampMicros int64
}

// ProcessingStats is a point-in-time copy of the Registry's aggregate
// counters, grounded on the reference implementation's
// ProcessingStats (symbol_message_counts / symbol_last_sequence).
type ProcessingStats struct {
	MessagesProcessed       uint64
	ProcessingErrors        uint64
	StaleSequencesObserved  uint64
	TruncatedLevelsObserved uint64
	LastSequenceProcessed   uint64
	SymbolMessageCounts     map[string]uint64
	SymbolLastSequence      map[string]uint64
}
