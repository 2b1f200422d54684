// Package blockchain implements the monetary transaction, proof-of-work
// block, chain and admission model described in original_source/blockchain.py
// and original_source/transaction.py.
package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Transaction is a monetary transfer from sender to recipient. Amounts are
// float64 to stay bit-compatible with the reference implementation's use
// of IEEE-754 doubles; equality for dedup purposes is always by the
// serialized id, never by comparing floats directly.
type Transaction struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Timestamp float64 `json:"timestamp"`
	ID        string  `json:"id"`
}

// NewTransaction builds a Transaction stamped with the current time and a
// deterministic id derived from its fields, mirroring
// Transaction.__init__ / generate_id in the reference implementation.
func NewTransaction(sender, recipient string, amount float64) *Transaction {
	tx := &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
	tx.ID = tx.generateID()
	return tx
}

// generateID hashes the canonical string form of sender, recipient, amount
// and timestamp, in that order, matching
// f"{sender}{recipient}{amount}{timestamp}" from the reference.
func (t *Transaction) generateID() string {
	s := fmt.Sprintf("%s%s%s%s", t.Sender, t.Recipient, formatAmount(t.Amount), formatTimestamp(t.Timestamp))
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// formatAmount renders a float64 the way Python's str() would for a typical
// transaction amount, which is what the reference concatenates into the id
// string (see pythonFloatString in canonical.go).
func formatAmount(f float64) string {
	return pythonFloatString(f)
}

func formatTimestamp(f float64) string {
	return pythonFloatString(f)
}

// Serialize renders the transaction as the JSON object described in spec
// §6.4: keys sender, recipient, amount, timestamp, id.
func (t *Transaction) Serialize() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DeserializeTransaction parses the JSON produced by Serialize.
func DeserializeTransaction(data string) (*Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
