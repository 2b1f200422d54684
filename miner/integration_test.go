package miner

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobireland/cryptonet/blockchain"
	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

func dialTestPeer(t *testing.T, addr string) *p2pconn.Peer {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	return p2pconn.New(conn)
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "condition never became true within %s", timeout)
}

func TestBootstrapIfAloneCreatesGenesis(t *testing.T) {
	n := NewNode("0")
	n.bootstrapIfAlone()
	waitFor(t, 2*time.Second, func() bool { return n.Chain() != nil })
	assert.Equal(t, 1, n.Chain().Len())
}

func TestBootstrapIfAloneIsNoopOnceChainSet(t *testing.T) {
	n := NewNode("0")
	existing := blockchain.New()
	n.setChain(existing)

	n.bootstrapIfAlone()
	// give any (incorrectly) spawned agent a moment, then confirm the
	// original chain pointer was not replaced.
	time.Sleep(20 * time.Millisecond)
	assert.Same(t, existing, n.Chain())
}

func TestOnTransactionMinesAndRespondsOverLoopback(t *testing.T) {
	n := NewNode("0")
	require.NoError(t, n.ListenForPeers())
	defer n.listener.Close()

	n.setChain(blockchain.New())
	n.walletMu.Lock()
	n.wallets.All["bob"] = struct{}{}
	n.wallets.Active["bob"] = struct{}{}
	n.walletMu.Unlock()

	addr := n.listener.Addr().String()
	peer := dialTestPeer(t, addr)
	defer peer.Close()

	tx := blockchain.NewTransaction("alice", "bob", 10)
	payload, err := tx.Serialize()
	require.NoError(t, err)
	require.NoError(t, peer.Send(wire.TxMsg, payload))

	msg, err := peer.Receive()
	require.NoError(t, err)
	assert.Equal(t, wire.TxResponse, msg.Type)
	assert.Contains(t, msg.Payload, "Transaction complete")

	waitFor(t, 2*time.Second, func() bool { return n.Chain().Len() == 2 })
}

func TestOnTransactionRejectsUnknownRecipientWithoutMining(t *testing.T) {
	n := NewNode("0")
	require.NoError(t, n.ListenForPeers())
	defer n.listener.Close()
	n.setChain(blockchain.New())

	addr := n.listener.Addr().String()
	peer := dialTestPeer(t, addr)
	defer peer.Close()

	tx := blockchain.NewTransaction("alice", "ghost", 10)
	payload, err := tx.Serialize()
	require.NoError(t, err)
	require.NoError(t, peer.Send(wire.TxMsg, payload))

	msg, err := peer.Receive()
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, "not a valid wallet address")
	assert.Equal(t, 1, n.Chain().Len())
}
