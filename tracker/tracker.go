// Package tracker implements the tracker role: it accepts registrations
// from miners and traders, keeps each side's address list, and broadcasts
// peer-list and wallet-directory updates whenever membership changes.
// Grounded on original_source/tracker.py's Tracker class.
package tracker

import (
	"net"
	"strings"
	"sync"

	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

var log = logger.New("tracker")

// minerEntry is one registered miner: its dialable address and the
// connection used to push it updates.
type minerEntry struct {
	addr wire.PeerAddr
	peer *p2pconn.Peer
}

// traderEntry is one registered trader, keyed by (ip, port-prefix) per
// spec §9 — preserved exactly as the reference implementation computes it,
// not "fixed" to a more robust key.
type traderEntry struct {
	key    string
	wallet string
	peer   *p2pconn.Peer
}

// Tracker holds the miner list and trader list under independent mutexes.
// Per spec §5/§9 the two locks must never be held at the same time by one
// goroutine; every method below takes at most one of them.
type Tracker struct {
	minersMu sync.Mutex
	miners   []minerEntry

	tradersMu sync.Mutex
	traders   []traderEntry

	// everMu guards everWallets, the set of every wallet address ever seen
	// registered, kept separately from the live trader list so that a
	// departed trader's wallet remains a recognized (if inactive) recipient.
	everMu      sync.Mutex
	everWallets map[string]struct{}

	listener net.Listener
}

// New constructs an empty Tracker.
func New() *Tracker {
	return &Tracker{everWallets: make(map[string]struct{})}
}

// traderKey derives the (ip, port-prefix) identity used to recognize a
// trader across its register/unregister calls, matching tracker.py's
// handling of a trader's observed remote address: the tracker only ever
// sees the trader's ephemeral outbound port on the connection, so it keys
// on IP plus the first two characters of the port the trader claims in its
// payload. This is fragile by construction (two traders on the same host
// whose claimed ports share a two-character prefix collide) and is
// preserved as-is per spec §9's resolution of the Open Question rather
// than redesigned.
func traderKey(ip, port string) string {
	prefix := port
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return ip + ":" + prefix
}

// Listen binds addr and accepts inbound connections from miners and
// traders, dispatching each on its first message type.
func (t *Tracker) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	t.listener = l

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				log.Warn("accept failed", "err", err)
				return
			}
			peer := p2pconn.New(conn)
			go t.handleConnection(peer)
		}
	}()
	return nil
}

// handleConnection reads messages from one connection until it closes,
// dispatching registration/unregistration types, matching tracker.py's
// handle_connection.
func (t *Tracker) handleConnection(p *p2pconn.Peer) {
	host, _, _ := net.SplitHostPort(p.RemoteAddr().String())

	defer func() {
		t.removeMiner(p)
		t.removeTrader(p)
		p.Close()
	}()

	for {
		msg, err := p.Receive()
		if err != nil {
			return
		}

		switch msg.Type {
		case wire.MinerRegister:
			t.registerMiner(host, msg.Payload, p)

		case wire.TraderRegister:
			t.registerTrader(host, msg.Payload, p)

		case wire.TraderUnregisterOrWallets:
			t.unregisterTrader(host, msg.Payload, p)

		case wire.Closed:
			return

		default:
			log.Warn("unexpected message from connection", "type", msg.Type)
		}
	}
}

// registerMiner adds a miner to the list and broadcasts the updated peer
// list to every miner (new miner included, each copy minus the recipient's
// own entry, so a sole miner receives an empty list) and every trader, then
// sends the new miner the current wallet directory.
func (t *Tracker) registerMiner(host, payload string, p *p2pconn.Peer) {
	addr := wire.PeerAddr{IP: host, Port: strings.TrimSpace(payload)}

	t.minersMu.Lock()
	t.miners = append(t.miners, minerEntry{addr: addr, peer: p})
	snapshot := t.minerAddrsLocked()
	t.minersMu.Unlock()

	log.Info("miner registered", "ip", addr.IP, "port", addr.Port)
	t.broadcastPeerList(snapshot)
	t.sendWalletDirectory(p)
}

// minerAddrsLocked returns the current miner address list. Caller must
// hold minersMu.
func (t *Tracker) minerAddrsLocked() []wire.PeerAddr {
	out := make([]wire.PeerAddr, len(t.miners))
	for i, m := range t.miners {
		out[i] = m.addr
	}
	return out
}

// broadcastPeerList sends the given miner address list, minus the
// recipient's own entry, to every registered miner and trader, matching
// tracker.py's update_peers fan-out to both audiences.
func (t *Tracker) broadcastPeerList(all []wire.PeerAddr) {
	t.minersMu.Lock()
	miners := append([]minerEntry(nil), t.miners...)
	t.minersMu.Unlock()

	for _, m := range miners {
		others := excludeSelf(all, m.addr)
		if err := m.peer.Send(wire.PeerList, wire.EncodePeerList(others)); err != nil {
			log.Warn("failed to send peer list to miner", "err", err)
		}
	}

	t.tradersMu.Lock()
	traders := append([]traderEntry(nil), t.traders...)
	t.tradersMu.Unlock()

	for _, tr := range traders {
		if err := tr.peer.Send(wire.PeerList, wire.EncodePeerList(all)); err != nil {
			log.Warn("failed to send peer list to trader", "err", err)
		}
	}
}

func excludeSelf(all []wire.PeerAddr, self wire.PeerAddr) []wire.PeerAddr {
	out := make([]wire.PeerAddr, 0, len(all))
	for _, a := range all {
		if a == self {
			continue
		}
		out = append(out, a)
	}
	return out
}

// registerTrader adds a trader (keyed by traderKey) to the trader list and
// pushes it the current miner peer list and every miner the current wallet
// directory, matching tracker.py's handling of indicator 8.
func (t *Tracker) registerTrader(host, payload string, p *p2pconn.Peer) {
	reg, ok := wire.DecodeTraderRegistration(payload)
	if !ok {
		log.Warn("malformed trader registration", "payload", payload)
		return
	}
	key := traderKey(host, reg.Port)

	t.tradersMu.Lock()
	t.traders = append(t.traders, traderEntry{key: key, wallet: reg.Wallet, peer: p})
	t.tradersMu.Unlock()

	log.Info("trader registered", "key", key, "wallet", reg.Wallet)

	t.minersMu.Lock()
	snapshot := t.minerAddrsLocked()
	t.minersMu.Unlock()

	if err := p.Send(wire.PeerList, wire.EncodePeerList(snapshot)); err != nil {
		log.Warn("failed to send peer list to new trader", "err", err)
	}

	t.broadcastWalletDirectory()
}

// unregisterTrader removes a trader by its (ip, port-prefix) key, matching
// tracker.py's handling of indicator 9 in the trader->tracker direction.
func (t *Tracker) unregisterTrader(host, payload string, p *p2pconn.Peer) {
	reg, ok := wire.DecodeTraderRegistration(payload)
	if !ok {
		log.Warn("malformed trader unregister", "payload", payload)
		return
	}
	key := traderKey(host, reg.Port)

	t.tradersMu.Lock()
	for i, tr := range t.traders {
		if tr.key == key {
			t.traders = append(t.traders[:i], t.traders[i+1:]...)
			break
		}
	}
	t.tradersMu.Unlock()

	log.Info("trader unregistered", "key", key)
	t.broadcastWalletDirectory()
}

// removeMiner drops a miner by connection identity on disconnect.
func (t *Tracker) removeMiner(p *p2pconn.Peer) {
	t.minersMu.Lock()
	removed := false
	for i, m := range t.miners {
		if m.peer == p {
			t.miners = append(t.miners[:i], t.miners[i+1:]...)
			removed = true
			break
		}
	}
	snapshot := t.minerAddrsLocked()
	t.minersMu.Unlock()

	if removed {
		log.Info("miner disconnected")
		t.broadcastPeerList(snapshot)
	}
}

// removeTrader drops a trader by connection identity on disconnect.
func (t *Tracker) removeTrader(p *p2pconn.Peer) {
	t.tradersMu.Lock()
	removed := false
	for i, tr := range t.traders {
		if tr.peer == p {
			t.traders = append(t.traders[:i], t.traders[i+1:]...)
			removed = true
			break
		}
	}
	t.tradersMu.Unlock()

	if removed {
		log.Info("trader disconnected")
		t.broadcastWalletDirectory()
	}
}

// sendWalletDirectory sends the current wallet directory to a single
// miner, used right after it registers.
func (t *Tracker) sendWalletDirectory(p *p2pconn.Peer) {
	all, active := t.walletSnapshot()
	payload := wire.EncodeWalletDirectory(all, active)
	if err := p.Send(wire.TraderUnregisterOrWallets, payload); err != nil {
		log.Warn("failed to send wallet directory to miner", "err", err)
	}
}

// broadcastWalletDirectory recomputes the (all, active) wallet lists from
// the current trader list and pushes the packet to every registered miner.
// "All" wallets accumulate across the tracker's lifetime (a trader that
// unregisters is no longer active but its wallet remains a valid, known
// recipient), matching tracker.py's separate all_wallets/active_wallets
// bookkeeping.
func (t *Tracker) broadcastWalletDirectory() {
	all, active := t.walletSnapshot()
	payload := wire.EncodeWalletDirectory(all, active)

	t.minersMu.Lock()
	miners := append([]minerEntry(nil), t.miners...)
	t.minersMu.Unlock()

	for _, m := range miners {
		if err := m.peer.Send(wire.TraderUnregisterOrWallets, payload); err != nil {
			log.Warn("failed to send wallet directory to miner", "err", err)
		}
	}
}

// walletSnapshot derives the active wallet list from the current trader
// list. allWallets is tracked separately in t.everWallets so that a
// departed trader's wallet stays a recognized (but inactive) recipient.
func (t *Tracker) walletSnapshot() (all, active []string) {
	t.tradersMu.Lock()
	defer t.tradersMu.Unlock()

	seen := make(map[string]struct{}, len(t.traders))
	active = make([]string, 0, len(t.traders))
	for _, tr := range t.traders {
		if _, ok := seen[tr.wallet]; ok {
			continue
		}
		seen[tr.wallet] = struct{}{}
		active = append(active, tr.wallet)
	}

	t.everMu.Lock()
	for _, w := range active {
		t.everWallets[w] = struct{}{}
	}
	all = make([]string, 0, len(t.everWallets))
	for w := range t.everWallets {
		all = append(all, w)
	}
	t.everMu.Unlock()

	return all, active
}
