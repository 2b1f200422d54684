package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeWallets(names ...string) *WalletDirectory {
	w := NewWalletDirectory()
	for _, n := range names {
		w.All[n] = struct{}{}
		w.Active[n] = struct{}{}
	}
	return w
}

func TestVerifyTransactionOk(t *testing.T) {
	c := New()
	wallets := activeWallets("alice", "bob")
	tx := NewTransaction("alice", "bob", 10)

	c.Lock()
	defer c.Unlock()
	v := c.VerifyTransaction(tx, wallets)
	assert.Equal(t, Ok, v.Reason)
	assert.Equal(t, StartingWalletAmount-10, v.Balance)
}

func TestVerifyTransactionUnknownRecipient(t *testing.T) {
	c := New()
	wallets := NewWalletDirectory()
	tx := NewTransaction("alice", "ghost", 10)

	c.Lock()
	defer c.Unlock()
	v := c.VerifyTransaction(tx, wallets)
	assert.Equal(t, UnknownRecipient, v.Reason)
}

func TestVerifyTransactionInactiveRecipient(t *testing.T) {
	c := New()
	wallets := NewWalletDirectory()
	wallets.All["bob"] = struct{}{} // known but not active

	tx := NewTransaction("alice", "bob", 10)

	c.Lock()
	defer c.Unlock()
	v := c.VerifyTransaction(tx, wallets)
	assert.Equal(t, InactiveRecipient, v.Reason)
}

func TestVerifyTransactionInsufficientFunds(t *testing.T) {
	c := New()
	wallets := activeWallets("alice", "bob")
	tx := NewTransaction("alice", "bob", StartingWalletAmount+1)

	c.Lock()
	defer c.Unlock()
	v := c.VerifyTransaction(tx, wallets)
	require.Equal(t, InsufficientFunds, v.Reason)
	assert.Equal(t, StartingWalletAmount, v.Balance)
}

func TestVerifyTransactionDuplicate(t *testing.T) {
	c := New()
	wallets := activeWallets("alice", "bob")
	tx := NewTransaction("alice", "bob", 10)
	payload, err := tx.Serialize()
	require.NoError(t, err)

	c.Lock()
	mined := Mine(c.Tip(), payload)
	require.True(t, c.AddBlockLocked(mined))
	v := c.VerifyTransaction(tx, wallets)
	c.Unlock()

	assert.Equal(t, Duplicate, v.Reason)
}

func TestVerdictMessageRendersHumanReadableStrings(t *testing.T) {
	tx := NewTransaction("alice", "bob", 10)

	assert.Contains(t, Verdict{Reason: Ok, Balance: 90}.Message(tx), "Transaction complete")
	assert.Contains(t, Verdict{Reason: Duplicate}.Message(tx), "already on chain")
	assert.Contains(t, Verdict{Reason: UnknownRecipient}.Message(tx), "not a valid wallet address")
	assert.Contains(t, Verdict{Reason: InactiveRecipient}.Message(tx), "not currently active")
	assert.Contains(t, Verdict{Reason: InsufficientFunds, Balance: 5}.Message(tx), "only has $5")
}
