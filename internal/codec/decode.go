package codec

import (
	"encoding/binary"

	"github.com/rickgao/marketdepth/internal/model"
)

// Decode parses a binary envelope into a model.Envelope. A msgType
// other than MsgOrderBookSnapshot is not an error: the returned
// Envelope carries model.MsgUnknown and the Pipeline is expected to
// skip it silently.
func Decode(data []byte) (model.Envelope, error) {
	if len(data) == 0 {
		return model.Envelope{}, ErrEmptyEnvelope
	}

	msgType := model.MsgType(data[0])
	if msgType != model.MsgOrderBookSnapshot {
		return model.Envelope{Type: model.MsgUnknown}, nil
	}

	snap, err := decodeSnapshotBody(data[1:])
	if err != nil {
		return model.Envelope{}, err
	}
	return model.Envelope{Type: msgType, Snapshot: snap}, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) byte() (byte, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	b := r.buf[r.pos]
	r.pos++
	return b, true
}

func (r *reader) bytes(n int) ([]byte, bool) {
	if r.remaining() < n {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *reader) uint32() (uint32, bool) {
	b, ok := r.bytes(4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

func (r *reader) uint64() (uint64, bool) {
	b, ok := r.bytes(8)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

func decodeSnapshotBody(body []byte) (model.DecodedSnapshot, error) {
	r := &reader{buf: body}

	symbolLen, ok := r.byte()
	if !ok {
		return model.DecodedSnapshot{}, ErrTruncatedEnvelope
	}
	symbolBytes, ok := r.bytes(int(symbolLen))
	if !ok {
		return model.DecodedSnapshot{}, ErrTruncatedEnvelope
	}

	seq, ok := r.uint64()
	if !ok {
		return model.DecodedSnapshot{}, ErrTruncatedEnvelope
	}
	tradePrice, ok := r.uint64()
	if !ok {
		return model.DecodedSnapshot{}, ErrTruncatedEnvelope
	}
	tradeQty, ok := r.uint64()
	if !ok {
		return model.DecodedSnapshot{}, ErrTruncatedEnvelope
	}

	buySide, err := decodeLevels(r)
	if err != nil {
		return model.DecodedSnapshot{}, err
	}
	sellSide, err := decodeLevels(r)
	if err != nil {
		return model.DecodedSnapshot{}, err
	}

	return model.DecodedSnapshot{
		Symbol:           string(symbolBytes),
		Seq:              seq,
		RecentTradePrice: tradePrice,
		RecentTradeQty:   tradeQty,
		BuySide:          buySide,
		SellSide:         sellSide,
	}, nil
}

func decodeLevels(r *reader) ([]model.Level, error) {
	numLevels, ok := r.uint32()
	if !ok {
		return nil, ErrTruncatedEnvelope
	}

	levels := make([]model.Level, 0, numLevels)
	for i := uint32(0); i < numLevels; i++ {
		price, ok := r.uint64()
		if !ok {
			return nil, ErrTruncatedEnvelope
		}
		numOrders, ok := r.uint32()
		if !ok {
			return nil, ErrTruncatedEnvelope
		}
		orders := make([]model.Order, 0, numOrders)
		for j := uint32(0); j < numOrders; j++ {
			qty, ok := r.uint64()
			if !ok {
				return nil, ErrTruncatedEnvelope
			}
			orders = append(orders, model.Order{Qty: qty})
		}
		levels = append(levels, model.Level{Price: price, Orders: orders})
	}
	return levels, nil
}
