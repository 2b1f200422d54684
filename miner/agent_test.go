package miner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobireland/cryptonet/blockchain"
)

func TestCPUAgentSealsGenesisTask(t *testing.T) {
	results := make(chan *miningResult, 1)
	a := newCPUAgent(results)
	a.Start()
	defer a.Stop()

	a.Submit(&miningTask{})

	select {
	case r := <-results:
		require.NotNil(t, r.block)
		assert.True(t, r.block.IsValidBlock())
		assert.Equal(t, uint64(0), r.block.Index)
	case <-time.After(2 * time.Second):
		t.Fatal("agent never returned a result")
	}
}

func TestCPUAgentSealsExtensionTask(t *testing.T) {
	results := make(chan *miningResult, 1)
	a := newCPUAgent(results)
	a.Start()
	defer a.Stop()

	g := blockchain.NewGenesisBlock()
	a.Submit(&miningTask{prev: g, txPayload: "payload"})

	select {
	case r := <-results:
		require.NotNil(t, r.block)
		assert.Equal(t, g.Index+1, r.block.Index)
		assert.Equal(t, g.Hash, r.block.PrevHash)
	case <-time.After(2 * time.Second):
		t.Fatal("agent never returned a result")
	}
}
