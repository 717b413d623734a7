package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rickgao/marketdepth/internal/model"
)

func encodeLevel(price uint64, qtys ...uint64) []byte {
	var buf bytes.Buffer
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], price)
	buf.Write(b8[:])
	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], uint32(len(qtys)))
	buf.Write(b4[:])
	for _, q := range qtys {
		binary.BigEndian.PutUint64(b8[:], q)
		buf.Write(b8[:])
	}
	return buf.Bytes()
}

func encodeSnapshotEnvelope(symbol string, seq, tradePrice, tradeQty uint64, buyLevels, sellLevels [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(model.MsgOrderBookSnapshot))
	buf.WriteByte(byte(len(symbol)))
	buf.WriteString(symbol)

	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], seq)
	buf.Write(b8[:])
	binary.BigEndian.PutUint64(b8[:], tradePrice)
	buf.Write(b8[:])
	binary.BigEndian.PutUint64(b8[:], tradeQty)
	buf.Write(b8[:])

	var b4 [4]byte
	binary.BigEndian.PutUint32(b4[:], uint32(len(buyLevels)))
	buf.Write(b4[:])
	for _, l := range buyLevels {
		buf.Write(l)
	}
	binary.BigEndian.PutUint32(b4[:], uint32(len(sellLevels)))
	buf.Write(b4[:])
	for _, l := range sellLevels {
		buf.Write(l)
	}
	return buf.Bytes()
}

func TestDecode_OrderBookSnapshot(t *testing.T) {
	raw := encodeSnapshotEnvelope("ABC", 1, 0, 0,
		[][]byte{encodeLevel(1000000, 100)},
		[][]byte{encodeLevel(1010000, 50)},
	)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Type != model.MsgOrderBookSnapshot {
		t.Fatalf("expected MsgOrderBookSnapshot, got %v", env.Type)
	}
	if env.Snapshot.Symbol != "ABC" || env.Snapshot.Seq != 1 {
		t.Fatalf("unexpected decoded snapshot: %+v", env.Snapshot)
	}
	if len(env.Snapshot.BuySide) != 1 || env.Snapshot.BuySide[0].Price != 1000000 {
		t.Fatalf("unexpected buy side: %+v", env.Snapshot.BuySide)
	}
	if env.Snapshot.BuySide[0].Orders[0].Qty != 100 {
		t.Fatalf("unexpected order qty: %+v", env.Snapshot.BuySide[0].Orders)
	}
}

func TestDecode_UnknownMessageTypeIsNotAnError(t *testing.T) {
	env, err := Decode([]byte{0x02, 0x01, 0x02})
	if err != nil {
		t.Fatalf("unexpected error for non-snapshot envelope: %v", err)
	}
	if env.Type == model.MsgOrderBookSnapshot {
		t.Fatalf("expected a non-snapshot message type")
	}
}

func TestDecode_EmptyEnvelope(t *testing.T) {
	if _, err := Decode(nil); err != ErrEmptyEnvelope {
		t.Fatalf("expected ErrEmptyEnvelope, got %v", err)
	}
}

func TestDecode_TruncatedBodyIsAnError(t *testing.T) {
	raw := []byte{byte(model.MsgOrderBookSnapshot), 0x03, 'A', 'B'} // symbolLen=3 but only 2 bytes follow
	if _, err := Decode(raw); err != ErrTruncatedEnvelope {
		t.Fatalf("expected ErrTruncatedEnvelope, got %v", err)
	}
}
