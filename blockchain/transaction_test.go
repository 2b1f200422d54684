package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionGeneratesID(t *testing.T) {
	tx := NewTransaction("alice", "bob", 10)
	assert.NotEmpty(t, tx.ID)
}

func TestSameFieldsDifferentTimestampsGiveDifferentIDs(t *testing.T) {
	a := NewTransaction("alice", "bob", 10)
	b := NewTransaction("alice", "bob", 10)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTransactionSerializeRoundTrip(t *testing.T) {
	tx := NewTransaction("alice", "bob", 10.5)
	data, err := tx.Serialize()
	require.NoError(t, err)

	round, err := DeserializeTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, round.ID)
	assert.Equal(t, tx.Sender, round.Sender)
	assert.Equal(t, tx.Recipient, round.Recipient)
	assert.Equal(t, tx.Amount, round.Amount)
}
