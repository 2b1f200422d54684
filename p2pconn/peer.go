// Package p2pconn wraps a single peer TCP connection with send/receive
// framing and known-item dedup caches, grounded on the teacher's
// node/cn/peer.go Peer type (Send, AddToKnownBlocks/AddToKnownTxs,
// knownBlocksCache/knownTxsCache backed by a hashicorp/golang-lru cache).
package p2pconn

import (
	"net"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/jacobireland/cryptonet/wire"
)

// Cache sizes mirror the teacher's maxKnownBlocks / maxKnownTxs constants
// in node/cn/peer.go, scaled down for a toy single-transaction-per-block
// chain.
const (
	maxKnownBlocks = 256
	maxKnownTxs    = 1024
)

// Peer is one TCP connection to another miner, a trader, or the tracker.
// Writes are serialized with a mutex since multiple goroutines (gossip
// broadcasters, direct responses) may write to the same peer concurrently.
type Peer struct {
	conn net.Conn

	writeMu sync.Mutex

	knownBlocks *lru.Cache
	knownTxs    *lru.Cache
}

// New wraps conn as a Peer with fresh known-item caches.
func New(conn net.Conn) *Peer {
	knownBlocks, _ := lru.New(maxKnownBlocks)
	knownTxs, _ := lru.New(maxKnownTxs)
	return &Peer{conn: conn, knownBlocks: knownBlocks, knownTxs: knownTxs}
}

// Conn exposes the underlying connection, e.g. for getpeername-style
// duplicate-connection checks (spec §4.4) via RemoteAddr.
func (p *Peer) Conn() net.Conn { return p.conn }

// RemoteAddr is the peer's observed network address.
func (p *Peer) RemoteAddr() net.Addr { return p.conn.RemoteAddr() }

// Send frames and writes a message to the peer, serialized against
// concurrent writers.
func (p *Peer) Send(msgType wire.Type, payload string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return wire.Write(p.conn, msgType, payload)
}

// Receive blocks for the next framed message from the peer.
func (p *Peer) Receive() (wire.Message, error) {
	return wire.Read(p.conn)
}

// Close closes the underlying connection.
func (p *Peer) Close() error {
	return p.conn.Close()
}

// KnowsBlock reports whether this peer is known to already have the given
// block hash, so gossip can skip sending it back.
func (p *Peer) KnowsBlock(hash string) bool {
	return p.knownBlocks.Contains(hash)
}

// MarkBlock records that this peer now knows about the given block hash.
func (p *Peer) MarkBlock(hash string) {
	p.knownBlocks.Add(hash, struct{}{})
}

// KnowsTx reports whether this peer is known to already have the given
// transaction id.
func (p *Peer) KnowsTx(id string) bool {
	return p.knownTxs.Contains(id)
}

// MarkTx records that this peer now knows about the given transaction id.
func (p *Peer) MarkTx(id string) {
	p.knownTxs.Add(id, struct{}{})
}
