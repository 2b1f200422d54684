package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"strings"
)

// Difficulty is the number of leading hex zeros a block's hash must carry
// to be considered valid proof of work. Spec §6.6: DIFFICULTY = 4.
const Difficulty = 4

// Genesis is the literal transaction payload carried only by block 0.
const Genesis = "GENESIS"

// Block is a single PoW-sealed node in the chain. Transaction is either the
// literal string "GENESIS" or the canonical JSON serialization of a
// Transaction — it is never a nested JSON object, per spec §6.5.
type Block struct {
	Index       uint64 `json:"index"`
	Nonce       uint32 `json:"nonce"`
	Transaction string `json:"transaction"`
	PrevHash    string `json:"prev_hash"`
	Hash        string `json:"hash"`
}

// CalculateHash returns the SHA-256 hex digest of the canonical JSON
// encoding of the block's four input fields, keys sorted ascending and
// rendered with the reference's json.dumps(sort_keys=True) spacing via
// canonicalJSON, so the hash input matches the reference byte-for-byte for
// the same field values as long as the strings are printable ASCII without
// <, > or & (see canonical.go).
func (b *Block) CalculateHash() string {
	data := canonicalJSON(map[string]interface{}{
		"index":       b.Index,
		"nonce":       b.Nonce,
		"transaction": b.Transaction,
		"prev_hash":   b.PrevHash,
	})
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// IsValidBlock reports whether the block's hash matches its recomputed
// digest and begins with Difficulty hex zeros.
func (b *Block) IsValidBlock() bool {
	return b.Hash == b.CalculateHash() && strings.HasPrefix(b.Hash, strings.Repeat("0", Difficulty))
}

// Seal searches for a nonce such that the block becomes valid proof of
// work, drawing nonces uniformly at random from [0, 2^32) and retrying
// until IsValidBlock holds. This is CPU-bound and synchronous, matching
// spec §4.1's random-sampling search policy.
func (b *Block) Seal() {
	b.SealStoppable(nil)
}

// SealStoppable is Seal with an optional cancellation channel: if stop is
// non-nil and becomes readable before a valid nonce is found, sealing
// abandons the search and returns false with Nonce/Hash left at their last
// attempted values. Used by the mining agent, which closes stop when it is
// handed a newer task or is stopped.
func (b *Block) SealStoppable(stop <-chan struct{}) bool {
	const checkInterval = 4096
	for i := 0; ; i++ {
		if stop != nil && i%checkInterval == 0 {
			select {
			case <-stop:
				return false
			default:
			}
		}
		b.Nonce = randomUint32()
		b.Hash = b.CalculateHash()
		if b.IsValidBlock() {
			return true
		}
	}
}

func randomUint32() uint32 {
	return rand.Uint32()
}

// Serialize renders the block as the JSON object described in spec §6.5.
func (b *Block) Serialize() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeserializeBlock parses the JSON produced by Serialize.
func DeserializeBlock(data string) (*Block, error) {
	var b Block
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// NewGenesisBlock constructs and seals block 0: index 0, empty prev_hash,
// the literal "GENESIS" payload.
func NewGenesisBlock() *Block {
	b := &Block{
		Index:       0,
		Transaction: Genesis,
		PrevHash:    "",
	}
	b.Seal()
	return b
}

// NewGenesisBlockStoppable is NewGenesisBlock with cancellation, for
// bootstrapping off a goroutine: it returns (nil, false) if stop fires
// before a valid nonce is found.
func NewGenesisBlockStoppable(stop <-chan struct{}) (*Block, bool) {
	b := &Block{
		Index:       0,
		Transaction: Genesis,
		PrevHash:    "",
	}
	if !b.SealStoppable(stop) {
		return nil, false
	}
	return b, true
}

// Mine constructs a candidate block extending prev with the given
// transaction payload and seals it via proof-of-work search.
func Mine(prev *Block, txPayload string) *Block {
	b := &Block{
		Index:       prev.Index + 1,
		Transaction: txPayload,
		PrevHash:    prev.Hash,
	}
	b.Seal()
	return b
}

// MineStoppable is Mine with cancellation: it returns (nil, false) if stop
// fires before a valid nonce is found.
func MineStoppable(prev *Block, txPayload string, stop <-chan struct{}) (*Block, bool) {
	b := &Block{
		Index:       prev.Index + 1,
		Transaction: txPayload,
		PrevHash:    prev.Hash,
	}
	if !b.SealStoppable(stop) {
		return nil, false
	}
	return b, true
}
