package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobireland/cryptonet/blockchain"
)

func TestSerializeDeserializeChainRoundTrip(t *testing.T) {
	g := blockchain.NewGenesisBlock()
	next := blockchain.Mine(g, "payload")
	blocks := []*blockchain.Block{g, next}

	data, err := serializeChain(blocks)
	require.NoError(t, err)

	round, err := deserializeChain(data)
	require.NoError(t, err)
	require.Len(t, round, 2)
	assert.Equal(t, g.Hash, round[0].Hash)
	assert.Equal(t, next.Hash, round[1].Hash)
}
