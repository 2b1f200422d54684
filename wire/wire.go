// Package wire implements the framed message protocol shared by the
// tracker, miner and trader processes: a 5-byte header (1-byte type code,
// 4-byte big-endian length) followed by a UTF-8 payload. Grounded on
// original_source/networking.py's send_custom/recv_custom, generalized
// into a reusable framer in the idiom of the teacher's
// node/cn/protocol.go message-code table.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// Type is a message type code, spec §6.1 byte 0.
type Type byte

const (
	// Closed marks connection closing / ack; an empty payload.
	Closed Type = 0
	// Block carries a serialized Block for miner<->miner gossip.
	Block Type = 1
	// ChainMsg carries a JSON array of serialized Blocks.
	ChainMsg Type = 2
	// TxMsg carries a serialized Transaction, trader->miner.
	TxMsg Type = 3
	// PeerList carries a peer-list packet, tracker->{miner,trader}.
	PeerList Type = 4
	// MinerRegister carries a decimal listen-port string, miner->tracker.
	MinerRegister Type = 5
	// ChainRequest's payload is ignored; miner<->miner.
	ChainRequest Type = 6
	// TxResponse carries a human-readable string, miner->trader.
	TxResponse Type = 7
	// TraderRegister carries "<port>,<wallet>", trader->tracker.
	TraderRegister Type = 8
	// TraderUnregisterOrWallets is type code 9, overloaded by direction:
	// trader->tracker carries "<port>,<wallet>" (unregister); tracker->
	// miner carries the wallet-directory packet. The receiver
	// disambiguates by its own role — see DecodeTraderRegistration and
	// DecodeWalletDirectory.
	TraderUnregisterOrWallets Type = 9
)

// MaxPayload bounds a single frame's declared length to guard against a
// malformed or hostile length header driving an unbounded allocation.
const MaxPayload = 64 * 1024 * 1024

// ErrClosed is returned by Read when the peer has closed the connection
// (a short read of fewer than 5 header bytes), per spec §6.1.
var ErrClosed = errors.New("wire: connection closed")

// Message is one framed protocol message.
type Message struct {
	Type    Type
	Payload string
}

// Write frames and sends msg on w (normally a net.Conn), matching
// send_custom's indicator_bytes + size_bytes + data layout.
func Write(w io.Writer, msgType Type, payload string) error {
	data := []byte(payload)
	header := make([]byte, 5)
	header[0] = byte(msgType)
	binary.BigEndian.PutUint32(header[1:], uint32(len(data)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Read blocks until a full frame has been read from r, or returns
// ErrClosed on a short read of the 5-byte header (connection closed or
// reset), matching recv_custom's header-then-loop-until-length behavior.
func Read(r io.Reader) (Message, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return Message{}, ErrClosed
	}

	msgType := Type(header[0])
	length := binary.BigEndian.Uint32(header[1:])
	if length > MaxPayload {
		return Message{}, errors.New("wire: declared payload exceeds maximum frame size")
	}

	data := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return Message{}, ErrClosed
		}
	}
	return Message{Type: msgType, Payload: string(data)}, nil
}
