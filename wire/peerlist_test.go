package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodePeerListRoundTrip(t *testing.T) {
	peers := []PeerAddr{{IP: "10.0.0.1", Port: "9100"}, {IP: "10.0.0.2", Port: "9101"}}
	packet := EncodePeerList(peers)
	assert.Equal(t, "('10.0.0.1', '9100');('10.0.0.2', '9101')", packet)

	round := DecodePeerList(packet)
	assert.Equal(t, peers, round)
}

func TestDecodeEmptyPeerList(t *testing.T) {
	assert.Nil(t, DecodePeerList(""))
}

func TestEncodeDecodeWalletDirectoryRoundTrip(t *testing.T) {
	packet := EncodeWalletDirectory([]string{"alice", "bob"}, []string{"alice"})
	assert.Equal(t, "alice,bob;alice", packet)

	all, active := DecodeWalletDirectory(packet)
	assert.Equal(t, []string{"alice", "bob"}, all)
	assert.Equal(t, []string{"alice"}, active)
}

func TestDecodeWalletDirectoryDiscardsEmptyEntries(t *testing.T) {
	all, active := DecodeWalletDirectory(";")
	assert.Empty(t, all)
	assert.Empty(t, active)
}

func TestTraderRegistrationRoundTrip(t *testing.T) {
	payload := EncodeTraderRegistration("9200", "alice")
	reg, ok := DecodeTraderRegistration(payload)
	assert.True(t, ok)
	assert.Equal(t, "9200", reg.Port)
	assert.Equal(t, "alice", reg.Wallet)
}

func TestDecodeTraderRegistrationMalformed(t *testing.T) {
	_, ok := DecodeTraderRegistration("no-comma-here")
	assert.False(t, ok)
}
