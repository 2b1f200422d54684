package tracker

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobireland/cryptonet/p2pconn"
	"github.com/jacobireland/cryptonet/wire"
)

func dialTracker(t *testing.T, addr string) *p2pconn.Peer {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	return p2pconn.New(conn)
}

func TestSingleMinerRegistersAlone(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Listen("127.0.0.1:0"))
	defer tr.listener.Close()

	miner := dialTracker(t, tr.listener.Addr().String())
	defer miner.Close()

	require.NoError(t, miner.Send(wire.MinerRegister, "9100"))

	msg, err := miner.Receive()
	require.NoError(t, err)
	assert.Equal(t, wire.PeerList, msg.Type)
	assert.Equal(t, "", msg.Payload, "sole miner should see an empty peer list")
}

func TestTraderRegistrationTriggersWalletBroadcastToMiner(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Listen("127.0.0.1:0"))
	defer tr.listener.Close()

	addr := tr.listener.Addr().String()

	miner := dialTracker(t, addr)
	defer miner.Close()
	require.NoError(t, miner.Send(wire.MinerRegister, "9100"))

	// drain the miner's own (empty) peer-list push
	_, err := miner.Receive()
	require.NoError(t, err)

	traderConn := dialTracker(t, addr)
	defer traderConn.Close()
	require.NoError(t, traderConn.Send(wire.TraderRegister, wire.EncodeTraderRegistration("9200", "alice")))

	// the trader first receives the current miner peer list
	peerMsg, err := traderConn.Receive()
	require.NoError(t, err)
	assert.Equal(t, wire.PeerList, peerMsg.Type)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg, err := miner.Receive()
		require.NoError(t, err)
		if msg.Type != wire.TraderUnregisterOrWallets {
			continue
		}
		all, active := wire.DecodeWalletDirectory(msg.Payload)
		found := false
		for _, w := range active {
			if w == "alice" {
				found = true
			}
		}
		if found {
			assert.Contains(t, all, "alice")
			return
		}
	}
	t.Fatal("miner never received a wallet directory update containing alice")
}
