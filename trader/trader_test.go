package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacobireland/cryptonet/wire"
)

func TestNewTraderStartsWithNoPeers(t *testing.T) {
	tr := New("9200", "alice")
	assert.Empty(t, tr.Peers())
}

func TestPeersReflectsLatestTrackerPush(t *testing.T) {
	tr := New("9200", "alice")
	tr.peersMu.Lock()
	tr.peers = []wire.PeerAddr{{IP: "10.0.0.1", Port: "9100"}}
	tr.peersMu.Unlock()

	peers := tr.Peers()
	assert.Equal(t, []wire.PeerAddr{{IP: "10.0.0.1", Port: "9100"}}, peers)
}
