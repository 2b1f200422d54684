package miner

import (
	"encoding/json"

	"github.com/jacobireland/cryptonet/blockchain"
)

// serializeChain renders a chain as the JSON array of opaque serialized
// block strings described in spec §6.5.
func serializeChain(blocks []*blockchain.Block) (string, error) {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		s, err := b.Serialize()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// deserializeChain parses the JSON array produced by serializeChain.
func deserializeChain(data string) ([]*blockchain.Block, error) {
	var parts []string
	if err := json.Unmarshal([]byte(data), &parts); err != nil {
		return nil, err
	}
	blocks := make([]*blockchain.Block, len(parts))
	for i, s := range parts {
		b, err := blockchain.DeserializeBlock(s)
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}
	return blocks, nil
}
