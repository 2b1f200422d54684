package blockchain

import (
	"sync"

	"github.com/jacobireland/cryptonet/internal/logger"
)

var log = logger.New("chain")

// Chain is an ordered, mutex-guarded sequence of blocks. A single chain
// mutex serializes append, whole-chain replacement and the admission
// balance-replay read that precedes mining, per spec §5: "An implementation
// MUST serialize chain mutations (e.g., a chain mutex taken across
// verify→mine→append→gossip and across reconcile)."
type Chain struct {
	mu     sync.Mutex
	blocks []*Block
}

// New starts a chain with a freshly mined genesis block, matching the
// reference Blockchain() constructor called with no chain argument.
func New() *Chain {
	return &Chain{blocks: []*Block{NewGenesisBlock()}}
}

// FromBlocks wraps an existing block slice without validating it, matching
// Blockchain(chain=...) in the reference implementation. Its callers are the
// miner's local genesis install and onChain's adoption of the first chain
// received while no local chain exists, which takes the chain as received.
func FromBlocks(blocks []*Block) *Chain {
	return &Chain{blocks: blocks}
}

// Lock/Unlock expose the chain mutex so a caller can hold it across a
// verify→mine→append→gossip sequence, as spec §5 requires.
func (c *Chain) Lock()   { c.mu.Lock() }
func (c *Chain) Unlock() { c.mu.Unlock() }

// Blocks returns the current block slice. Callers iterating without also
// mutating should hold the chain lock for the duration if they need a
// consistent view across subsequent operations.
func (c *Chain) Blocks() []*Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Len returns the number of blocks currently on the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// Tip returns the last block on the chain. It does not take the chain lock,
// so it can be called by a caller already holding it (as onTransaction does
// across verify→mine→append); callers racing with writers must hold it.
func (c *Chain) Tip() *Block {
	return c.blocks[len(c.blocks)-1]
}

// AddBlockLocked appends block iff it chains to the current tip and is
// well-formed. Caller must hold the chain lock (c.Lock()/c.Unlock()).
func (c *Chain) AddBlockLocked(b *Block) bool {
	tip := c.blocks[len(c.blocks)-1]
	if b.PrevHash == tip.Hash && b.IsValidBlock() {
		c.blocks = append(c.blocks, b)
		return true
	}
	return false
}

// AddBlock appends block iff it chains to the current tip and is
// well-formed, taking the chain lock itself.
func (c *Chain) AddBlock(b *Block) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AddBlockLocked(b)
}

// IsValidChain reports whether every non-genesis block is well-formed,
// chains to its predecessor's hash, and carries index prev.index+1. The
// genesis block is trusted unconditionally.
func IsValidChain(blocks []*Block) bool {
	for i := 1; i < len(blocks); i++ {
		cur, prev := blocks[i], blocks[i-1]
		if !cur.IsValidBlock() || cur.PrevHash != prev.Hash || cur.Index != prev.Index+1 {
			return false
		}
	}
	return true
}

// TransactionExistsLocked reports whether a transaction with the given id
// appears anywhere on the chain (genesis blocks are skipped since their
// payload is the literal "GENESIS", not a serialized transaction).
// Caller must hold the chain lock.
func (c *Chain) TransactionExistsLocked(id string) bool {
	for _, b := range c.blocks {
		if b.Transaction == Genesis {
			continue
		}
		tx, err := DeserializeTransaction(b.Transaction)
		if err != nil {
			continue
		}
		if tx.ID == id {
			return true
		}
	}
	return false
}

// BalanceLocked replays the chain to derive wallet's current balance,
// starting from StartingWalletAmount. Caller must hold the chain lock.
func (c *Chain) BalanceLocked(wallet string) float64 {
	balance := StartingWalletAmount
	for i := 1; i < len(c.blocks); i++ {
		tx, err := DeserializeTransaction(c.blocks[i].Transaction)
		if err != nil {
			continue
		}
		if tx.Sender == wallet {
			balance -= tx.Amount
		}
		if tx.Recipient == wallet {
			balance += tx.Amount
		}
	}
	return balance
}

// Reconcile applies the §4.2 reconciliation rule against a candidate chain
// received from a peer, reporting whether the local chain was replaced and
// whether the (possibly unchanged) local chain should be rebroadcast.
//
//  1. absent local chain -> adopt, broadcast
//  2. longer + valid -> adopt, broadcast
//  3. same length + valid + different tip -> lexicographically smaller tip
//     wins; rebroadcast whichever won
//  4. otherwise -> no action
func (c *Chain) Reconcile(candidate []*Block) (adopted, rebroadcast bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.blocks) == 0 {
		c.blocks = candidate
		return true, true
	}

	localTip := c.blocks[len(c.blocks)-1]
	candTip := candidate[len(candidate)-1]

	if len(candidate) > len(c.blocks) {
		if !IsValidChain(candidate) {
			return false, false
		}
		log.Info("chain overwritten", "reason", "longer", "old_len", len(c.blocks), "new_len", len(candidate))
		c.blocks = candidate
		return true, true
	}

	if len(candidate) == len(c.blocks) && localTip.Hash != candTip.Hash && IsValidChain(candidate) {
		if localTip.Hash < candTip.Hash {
			// local wins tie-break; rebroadcast local, no replacement.
			return false, true
		}
		log.Info("chain overwritten", "reason", "tie-break-lower-hash")
		c.blocks = candidate
		return true, true
	}

	return false, false
}

// StartingWalletAmount is the balance every wallet implicitly starts with
// before any transaction involving it appears on the chain. Spec §6.6:
// STARTING_WALLET_AMOUNT = 100.0.
const StartingWalletAmount = 100.0
