package miner

import (
	"net"

	"github.com/jacobireland/cryptonet/blockchain"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

// HandleTracker connects to the tracker, announces this miner's listen
// port, and then loops forever applying peer-list (type 4) and
// wallet-directory (type 9, tracker direction) updates, matching
// miner.py's handle_tracker.
func (n *Node) HandleTracker(trackerAddr string) error {
	conn, err := net.Dial("tcp", trackerAddr)
	if err != nil {
		return err
	}

	if err := wire.Write(conn, wire.MinerRegister, n.ListenPort); err != nil {
		return err
	}

	for {
		msg, err := wire.Read(conn)
		if err != nil {
			log.Warn("tracker connection closed", "err", err)
			return err
		}

		switch msg.Type {
		case wire.TraderUnregisterOrWallets:
			n.onWalletDirectory(msg.Payload)
		case wire.PeerList:
			n.onPeerList(msg.Payload)
		default:
			log.Warn("unexpected message from tracker", "type", msg.Type)
		}
	}
}

// onWalletDirectory applies a tracker->miner wallet packet (type 9).
func (n *Node) onWalletDirectory(payload string) {
	all, active := wire.DecodeWalletDirectory(payload)

	wallets := blockchain.NewWalletDirectory()
	for _, w := range all {
		wallets.All[w] = struct{}{}
	}
	for _, w := range active {
		wallets.Active[w] = struct{}{}
	}

	n.walletMu.Lock()
	n.wallets = wallets
	n.walletMu.Unlock()
}

// onPeerList applies a tracker->{miner,trader} peer-list packet (type 4):
// bootstrap genesis if we're the only known miner and have no chain yet,
// replace the target peer list (excluding ourselves), then (re)connect.
func (n *Node) onPeerList(payload string) {
	peers := wire.DecodePeerList(payload)

	if len(peers) == 0 {
		n.bootstrapIfAlone()
	}

	self := n.ListenPort
	filtered := make([]wire.PeerAddr, 0, len(peers))
	for _, p := range peers {
		if p.Port == self {
			continue
		}
		filtered = append(filtered, p)
	}

	n.peerListMu.Lock()
	n.peerList = filtered
	n.peerListMu.Unlock()

	n.connectToPeers()
}

// bootstrapIfAlone kicks off an asynchronous genesis search if no chain has
// been set up yet — either by an earlier bootstrap or a chain already
// received from a peer — when the tracker reports this miner as the only
// known peer. Matches miner.py: "if len(peer_list) == 1 and
// self.blockchain is None", but sealing happens off the tracker-callback
// goroutine via genesisAgent so a slow difficulty never blocks receiving
// further tracker updates; onChain's setChainIfAbsent still wins the race
// if a peer's chain arrives before local sealing finishes.
func (n *Node) bootstrapIfAlone() {
	if n.Chain() != nil {
		return
	}
	n.genesisAgent.Submit(&miningTask{})
}

// connectToPeers dials every peer on the current target list that isn't
// already connected, matching miner.py's connect_to_peers (including its
// duplicate-connection suppression by remote address).
func (n *Node) connectToPeers() {
	n.peerListMu.Lock()
	targets := append([]wire.PeerAddr(nil), n.peerList...)
	n.peerListMu.Unlock()

	for _, addr := range targets {
		key := net.JoinHostPort(addr.IP, addr.Port)

		n.connMu.Lock()
		dup := n.hasConnLocked(key)
		n.connMu.Unlock()
		if dup {
			continue
		}

		conn, err := net.Dial("tcp", key)
		if err != nil {
			log.Warn("failed to connect to peer", "addr", key, "err", err)
			continue
		}

		peer := p2pconn.New(conn)
		n.addConn(key, peer)
		go n.handleConnection(key, peer)

		log.Info("connected to peer", "addr", key)
		// Immediately request the peer's chain, matching miner.py's
		// connect_to_peers calling request_chain() per new connection.
		if err := peer.Send(wire.ChainRequest, ""); err != nil {
			log.Warn("failed to request chain from new peer", "err", err)
		}
	}
}
