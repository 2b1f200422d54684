package miner

import (
	"net"

	"github.com/jacobireland/cryptonet/blockchain"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

// ListenForPeers binds the miner's listen port and accepts inbound peer
// connections, starting a receive-dispatch goroutine per connection,
// matching miner.py's listen_for_peers.
func (n *Node) ListenForPeers() error {
	l, err := net.Listen("tcp", ":"+n.ListenPort)
	if err != nil {
		return err
	}
	n.listener = l

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				log.Warn("accept failed", "err", err)
				return
			}
			peer := p2pconn.New(conn)
			key := conn.RemoteAddr().String()
			n.addConn(key, peer)
			go n.handleConnection(key, peer)
		}
	}()
	return nil
}

// handleConnection is the per-connection receive-dispatch loop, grounded
// on miner.py's handle_connection: it loops reading framed messages and
// dispatches on type until the connection closes.
func (n *Node) handleConnection(key string, p *p2pconn.Peer) {
	defer func() {
		n.removeConn(key)
		p.Close()
	}()

	for {
		msg, err := p.Receive()
		if err != nil {
			return
		}

		switch msg.Type {
		case wire.Closed:
			return

		case wire.Block:
			n.onBlock(msg.Payload)

		case wire.ChainMsg:
			n.onChain(msg.Payload)

		case wire.TxMsg:
			n.onTransaction(p, msg.Payload)

		case wire.ChainRequest:
			n.onChainRequest(p)

		default:
			log.Warn("unknown message type", "type", msg.Type)
		}
	}
}

// onBlock handles an incoming block gossip message (type 1): attempt to
// append it to the local chain; on success, re-gossip it; on failure
// (it doesn't chain to the current tip), request full chains from every
// peer so reconciliation can resolve the fork, per spec §4.4.
func (n *Node) onBlock(data string) {
	b, err := blockchain.DeserializeBlock(data)
	if err != nil {
		log.Warn("failed to deserialize incoming block", "err", err)
		return
	}

	chain := n.Chain()
	if chain == nil {
		return
	}

	if chain.AddBlock(b) {
		n.broadcastBlock(b)
	} else {
		n.requestChain()
	}
}

// onChain handles an incoming full-chain message (type 2) by running the
// §4.2 reconciliation rule.
func (n *Node) onChain(data string) {
	blocks, err := deserializeChain(data)
	if err != nil {
		log.Warn("failed to deserialize incoming chain", "err", err)
		return
	}

	if n.setChainIfAbsent(blockchain.FromBlocks(blocks)) {
		log.Info("initial chain received from peer", "len", len(blocks))
		n.broadcastChain()
		return
	}

	chain := n.Chain()
	adopted, rebroadcast := chain.Reconcile(blocks)
	if rebroadcast {
		n.broadcastChain()
	}
	if adopted {
		log.Info("chain replaced via reconciliation", "len", chain.Len())
	}
}

// onTransaction handles an incoming transaction submission (type 3): runs
// admission, mines a block on success, gossips it, and replies to the
// submitter unless the rejection reason is Duplicate (spec §4.4: every
// miner in a network of N receives and rejects the same broadcast N-1
// times, so duplicates are silently dropped).
func (n *Node) onTransaction(p *p2pconn.Peer, data string) {
	tx, err := blockchain.DeserializeTransaction(data)
	if err != nil {
		log.Warn("failed to deserialize incoming transaction", "err", err)
		return
	}

	chain := n.Chain()
	if chain == nil {
		return
	}

	n.walletMu.Lock()
	wallets := n.wallets
	n.walletMu.Unlock()

	chain.Lock()
	verdict := chain.VerifyTransaction(tx, wallets)
	var mined *blockchain.Block
	if verdict.Reason == blockchain.Ok {
		tip := chain.Tip()
		mined = blockchain.Mine(tip, data)
		added := chain.AddBlockLocked(mined)
		if added {
			log.Info("mined new block", "index", mined.Index, "hash", mined.Hash)
		} else {
			// the chain lock is held across mining, so the tip cannot
			// move; this branch only runs if the mined block fails
			// AddBlockLocked's checks, and the block is discarded.
			log.Info("mined block superseded before append", "index", mined.Index)
			mined = nil
		}
	}
	chain.Unlock()

	if mined != nil {
		n.broadcastBlock(mined)
	}

	if verdict.Reason != blockchain.Duplicate {
		if err := p.Send(wire.TxResponse, verdict.Message(tx)); err != nil {
			log.Warn("failed to send transaction response", "err", err)
		}
	}
}

// onChainRequest replies with the full local chain (type 2), matching
// miner.py's handling of indicator 6.
func (n *Node) onChainRequest(p *p2pconn.Peer) {
	chain := n.Chain()
	if chain == nil {
		return
	}
	payload, err := serializeChain(chain.Blocks())
	if err != nil {
		log.Error("failed to serialize chain for chain-request reply", "err", err)
		return
	}
	if err := p.Send(wire.ChainMsg, payload); err != nil {
		log.Warn("failed to reply to chain request", "err", err)
	}
}
