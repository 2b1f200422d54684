// Package trader implements the trader role: register with the tracker,
// track the current miner peer list, and fan a transaction out to every
// known miner, keeping only the first response. Grounded on
// original_source/trader.py's Trader class. The CLI surface around this is
// explicitly out of scope per spec §1 (an external collaborator owns it);
// this package exposes only the networking primitives it would call.
package trader

import (
	"errors"
	"net"
	"sync"

	"github.com/jacobireland/cryptonet/blockchain"
	"github.com/jacobireland/cryptonet/internal/logger"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

// ErrNoPeers is returned by SendTransaction when the trader has not yet
// received a non-empty peer list from the tracker.
var ErrNoPeers = errors.New("trader: no known miners")

// ErrNoResponse is returned by SendTransaction when every dialed miner
// failed to connect or respond.
var ErrNoResponse = errors.New("trader: no miner responded")

var log = logger.New("trader")

// Trader is one trading client's session state: its own listen port and
// wallet address, the tracker connection, and the most recent miner list.
type Trader struct {
	ListenPort string
	Wallet     string

	trackerAddr string
	trackerConn net.Conn

	peersMu sync.Mutex
	peers   []wire.PeerAddr
}

// New constructs a Trader for the given wallet address; listenPort is the
// port this trader claims in its tracker registration (used only as the
// (ip, port-prefix) identity key by the tracker, spec §9 — this trader
// never actually listens on it).
func New(listenPort, wallet string) *Trader {
	return &Trader{ListenPort: listenPort, Wallet: wallet}
}

// Register connects to the tracker, announces (port, wallet) via type 8,
// and starts a background loop applying peer-list updates (type 4) until
// the connection closes, matching trader.py's tracker_thread.
func (t *Trader) Register(trackerAddr string) error {
	conn, err := net.Dial("tcp", trackerAddr)
	if err != nil {
		return err
	}
	t.trackerAddr = trackerAddr
	t.trackerConn = conn

	payload := wire.EncodeTraderRegistration(t.ListenPort, t.Wallet)
	if err := wire.Write(conn, wire.TraderRegister, payload); err != nil {
		return err
	}

	go t.trackerLoop(conn)
	return nil
}

func (t *Trader) trackerLoop(conn net.Conn) {
	for {
		msg, err := wire.Read(conn)
		if err != nil {
			log.Warn("tracker connection closed", "err", err)
			return
		}
		if msg.Type != wire.PeerList {
			log.Warn("unexpected message from tracker", "type", msg.Type)
			continue
		}
		peers := wire.DecodePeerList(msg.Payload)
		t.peersMu.Lock()
		t.peers = peers
		t.peersMu.Unlock()
	}
}

// Unregister tells the tracker to drop this trader (type 9, trader
// direction) and closes the tracker connection, matching trader.py's
// shutdown path.
func (t *Trader) Unregister() error {
	if t.trackerConn == nil {
		return nil
	}
	payload := wire.EncodeTraderRegistration(t.ListenPort, t.Wallet)
	if err := wire.Write(t.trackerConn, wire.TraderUnregisterOrWallets, payload); err != nil {
		return err
	}
	return t.trackerConn.Close()
}

// Peers returns the most recently received miner peer list.
func (t *Trader) Peers() []wire.PeerAddr {
	t.peersMu.Lock()
	defer t.peersMu.Unlock()
	return append([]wire.PeerAddr(nil), t.peers...)
}

// SendTransaction connects to every known miner, sends the transaction to
// each, and returns the first type-7 response received, matching
// trader.py's send_transaction fan-out. Later responses (the N-1 rejection
// echoes every other miner sends back) are drained and discarded in the
// background so those connections don't block.
func (t *Trader) SendTransaction(recipient string, amount float64) (string, error) {
	tx := blockchain.NewTransaction(t.Wallet, recipient, amount)
	payload, err := tx.Serialize()
	if err != nil {
		return "", err
	}

	peers := t.Peers()
	if len(peers) == 0 {
		return "", ErrNoPeers
	}

	type result struct {
		resp string
		err  error
	}
	results := make(chan result, len(peers))

	for _, addr := range peers {
		go func(addr wire.PeerAddr) {
			conn, err := net.Dial("tcp", net.JoinHostPort(addr.IP, addr.Port))
			if err != nil {
				results <- result{err: err}
				return
			}
			defer conn.Close()

			if err := wire.Write(conn, wire.TxMsg, payload); err != nil {
				results <- result{err: err}
				return
			}

			msg, err := wire.Read(conn)
			if err != nil {
				results <- result{err: err}
				return
			}
			results <- result{resp: msg.Payload}
		}(addr)
	}

	var first result
	for i := 0; i < len(peers); i++ {
		r := <-results
		if r.err == nil && first.resp == "" {
			first = r
			break
		}
	}
	if first.resp == "" {
		return "", ErrNoResponse
	}
	return first.resp, nil
}
