package model

// MsgType tags the payload carried by an Envelope.
type MsgType uint8

const (
	// MsgUnknown covers any tag the pipeline does not understand; such
	// envelopes are silently skipped, not treated as an error.
	MsgUnknown MsgType = 0
	// MsgOrderBookSnapshot identifies a self-contained order-book snapshot.
	MsgOrderBookSnapshot MsgType = 1
)

// Order is a single resting order aggregated into a PriceLevel.
type Order struct {
	Qty uint64
}

// Level is one price point on one side of the book, as decoded from the
// wire and not yet aggregated into a book.PriceLevel.
type Level struct {
	Price  uint64
	Orders []Order
}

// Envelope is the decoded wire frame. Type selects which accessor is
// meaningful; callers must check Type before reading Snapshot.
type Envelope struct {
	Type     MsgType
	Snapshot DecodedSnapshot
}

// DecodedSnapshot is the zero-copy-friendly view of an OrderBookSnapshot
// message exposed by the wire codec. It mirrors the FlatBuffers
// accessor shape described in the wire schema: Symbol/Seq/trade fields
// plus the two level sequences.
type DecodedSnapshot struct {
	Symbol           string
	Seq              uint64
	RecentTradePrice uint64
	RecentTradeQty   uint64
	BuySide          []Level
	SellSide         []Level
}
