package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacobireland/cryptonet/wire"
)

func TestTraderKeyUsesTwoCharacterPortPrefix(t *testing.T) {
	assert.Equal(t, "10.0.0.1:92", traderKey("10.0.0.1", "9200"))
	assert.Equal(t, "10.0.0.1:92", traderKey("10.0.0.1", "9299"))
	assert.Equal(t, "10.0.0.1:9", traderKey("10.0.0.1", "9"))
}

func TestExcludeSelfRemovesOwnEntry(t *testing.T) {
	all := []wire.PeerAddr{
		{IP: "a", Port: "1"},
		{IP: "b", Port: "2"},
		{IP: "c", Port: "3"},
	}
	out := excludeSelf(all, all[1])
	assert.Len(t, out, 2)
	assert.NotContains(t, out, all[1])
}
