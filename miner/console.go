package miner

import "fmt"

// DumpChain prints every block currently on the local chain to stdout.
// Supplements the core gossip/mining loops with the interactive
// dump-chain-on-Enter convenience from original_source/miner.py's console
// loop (`input()` triggering a full chain printout), kept thin and
// non-blocking relative to the protocol goroutines.
func (n *Node) DumpChain() {
	chain := n.Chain()
	if chain == nil {
		fmt.Println("no chain yet")
		return
	}
	for _, b := range chain.Blocks() {
		fmt.Printf("#%d hash=%s prev=%s tx=%s\n", b.Index, b.Hash, b.PrevHash, b.Transaction)
	}
}
