// Package miner implements the miner role: it holds a chain replica,
// accepts transactions from traders, mines blocks, gossips blocks and
// chains with peer miners, and reconciles forks. Grounded on
// original_source/miner.py's Miner class and the teacher's
// node/cn/peer.go peer-set-under-mutex pattern.
package miner

import (
	"net"
	"sync"

	"github.com/jacobireland/cryptonet/blockchain"
	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

var log = logger.New("miner")

// Node is one miner's local state: its chain replica, its connections to
// other miners, and the wallet directory it last heard from the tracker.
type Node struct {
	ListenPort string

	// chainMu guards the chain pointer itself (nil until bootstrap or the
	// first peer chain arrives); Chain's own internal mutex separately
	// guards mutation of the blocks it holds once assigned.
	chainMu sync.Mutex
	chain   *blockchain.Chain

	walletMu sync.Mutex
	wallets  *blockchain.WalletDirectory

	peerListMu sync.Mutex
	peerList   []wire.PeerAddr

	connMu sync.Mutex
	conns  map[string]*p2pconn.Peer // keyed by "ip:port" of the remote peer

	listener net.Listener

	// genesisAgent runs the bootstrap genesis search off whatever
	// goroutine discovers we're alone on the network (the tracker's
	// peer-list callback), so that goroutine is never blocked CPU-bound
	// proportional to difficulty. Adapted from the teacher's
	// work.CpuAgent start/stop-via-atomic-flag shape.
	genesisAgent   *cpuAgent
	genesisResults chan *miningResult
}

// Chain returns the current chain replica, or nil if none has been
// bootstrapped or received from a peer yet.
func (n *Node) Chain() *blockchain.Chain {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()
	return n.chain
}

// setChain installs chain unconditionally, used by bootstrap and by the
// "first chain ever received" path in onChain.
func (n *Node) setChain(c *blockchain.Chain) {
	n.chainMu.Lock()
	n.chain = c
	n.chainMu.Unlock()
}

// setChainIfAbsent installs c as the chain only if none has been set yet,
// returning whether it installed one. Used for the bootstrap race between
// "tracker says we're alone" and a peer chain arriving concurrently.
func (n *Node) setChainIfAbsent(c *blockchain.Chain) bool {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()
	if n.chain != nil {
		return false
	}
	n.chain = c
	return true
}

// NewNode constructs a Node that has not yet connected to a tracker or
// mined anything; Chain stays nil until bootstrap decides whether to mine
// genesis locally or wait for a peer's chain.
func NewNode(listenPort string) *Node {
	results := make(chan *miningResult, 1)
	n := &Node{
		ListenPort:     listenPort,
		wallets:        blockchain.NewWalletDirectory(),
		conns:          make(map[string]*p2pconn.Peer),
		genesisAgent:   newCPUAgent(results),
		genesisResults: results,
	}
	n.genesisAgent.Start()
	go n.consumeGenesisResults()
	return n
}

// consumeGenesisResults installs a successfully sealed genesis block as
// the chain, unless a peer's chain was adopted in the meantime.
func (n *Node) consumeGenesisResults() {
	for result := range n.genesisResults {
		if result.block == nil {
			continue
		}
		if n.setChainIfAbsent(blockchain.FromBlocks([]*blockchain.Block{result.block})) {
			log.Info("local genesis block sealed and installed")
			n.broadcastChain()
		}
	}
}

// hasConnLocked reports whether a connection under key already exists,
// mirroring miner.py's connect_to_peers duplicate check
// (`conn.getpeername() == (peer[0], peer[1])`). Caller must hold connMu.
func (n *Node) hasConnLocked(key string) bool {
	_, ok := n.conns[key]
	return ok
}

func (n *Node) addConn(key string, p *p2pconn.Peer) {
	n.connMu.Lock()
	n.conns[key] = p
	n.connMu.Unlock()
}

func (n *Node) removeConn(key string) {
	n.connMu.Lock()
	delete(n.conns, key)
	n.connMu.Unlock()
}

// peers returns a snapshot of currently connected peers for broadcast
// iteration, avoiding holding connMu across network writes.
func (n *Node) peers() []*p2pconn.Peer {
	n.connMu.Lock()
	defer n.connMu.Unlock()
	out := make([]*p2pconn.Peer, 0, len(n.conns))
	for _, p := range n.conns {
		out = append(out, p)
	}
	return out
}

// broadcastBlock gossips a newly accepted block to every connected miner
// peer, skipping peers already known to have it.
func (n *Node) broadcastBlock(b *blockchain.Block) {
	data, err := b.Serialize()
	if err != nil {
		log.Error("failed to serialize block for gossip", "err", err)
		return
	}
	for _, p := range n.peers() {
		if p.KnowsBlock(b.Hash) {
			continue
		}
		if err := p.Send(wire.Block, data); err != nil {
			log.Warn("failed to send block to peer", "err", err)
			continue
		}
		p.MarkBlock(b.Hash)
	}
}

// broadcastChain gossips the full local chain to every connected peer,
// matching miner.py's broadcast_chain.
func (n *Node) broadcastChain() {
	blocks := n.Chain().Blocks()
	payload, err := serializeChain(blocks)
	if err != nil {
		log.Error("failed to serialize chain for gossip", "err", err)
		return
	}
	for _, p := range n.peers() {
		if err := p.Send(wire.ChainMsg, payload); err != nil {
			log.Warn("failed to send chain to peer", "err", err)
		}
	}
}

// requestChain asks every connected peer for its full chain (type 6),
// triggering reconciliation on whichever responses arrive.
func (n *Node) requestChain() {
	for _, p := range n.peers() {
		if err := p.Send(wire.ChainRequest, ""); err != nil {
			log.Warn("failed to request chain from peer", "err", err)
		}
	}
}
