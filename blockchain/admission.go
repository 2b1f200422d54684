package blockchain

import "fmt"

// Reason is the outcome of running a transaction through admission. It is
// kept as a typed enum internally; only the human-readable rendering
// (Verdict.Message) crosses the wire, per spec §6.4/§7.
type Reason int

const (
	// Ok means the transaction is eligible to be mined.
	Ok Reason = iota
	// Duplicate means tx.id already appears on the chain. Per spec §4.4,
	// duplicates are never reported back to the submitter.
	Duplicate
	// UnknownRecipient means tx.recipient was never seen by the tracker.
	UnknownRecipient
	// InactiveRecipient means tx.recipient is known but not currently
	// connected.
	InactiveRecipient
	// InsufficientFunds means tx.amount exceeds the sender's derived
	// balance.
	InsufficientFunds
)

// Verdict is the result of VerifyTransaction: a Reason plus the balance
// figure relevant to that reason (available balance on failure, or
// resulting balance after the transfer on success).
type Verdict struct {
	Reason  Reason
	Balance float64
}

// Message renders the verdict as the human-readable string spec §4.3/§7
// requires be sent back to the originating trader via a type-7 message.
// Duplicate is intentionally reachable here too — callers are responsible
// for suppressing the type-7 send for Duplicate, per spec §4.4.
func (v Verdict) Message(tx *Transaction) string {
	switch v.Reason {
	case Ok:
		return fmt.Sprintf("Transaction complete\nAccount balance: $%v\n", v.Balance)
	case Duplicate:
		return "TRANSACTION FAILED: transaction already on chain"
	case UnknownRecipient:
		return fmt.Sprintf("TRANSACTION FAILED: %s is not a valid wallet address.\n", tx.Recipient)
	case InactiveRecipient:
		return fmt.Sprintf("TRANSACTION FAILED: %s is not currently active.\n", tx.Recipient)
	case InsufficientFunds:
		return fmt.Sprintf("TRANSACTION FAILED: %s only has $%v in their account.\n", tx.Sender, v.Balance)
	default:
		return "TRANSACTION FAILED: unknown error"
	}
}

// WalletDirectory is the set of wallets known to the network, mirroring
// the tracker's (all_wallets, active_wallets) pair. Set membership is
// tested by the miner against the packet most recently received from the
// tracker (type 9), see wire.DecodeWalletDirectory.
type WalletDirectory struct {
	All    map[string]struct{}
	Active map[string]struct{}
}

func NewWalletDirectory() *WalletDirectory {
	return &WalletDirectory{All: map[string]struct{}{}, Active: map[string]struct{}{}}
}

// VerifyTransaction runs the six-step admission policy from spec §4.3
// against the chain (which must already be locked by the caller, since the
// miner runs verify→mine→append under one chain mutex acquisition and
// gossips the mined block after releasing it) and the wallet directory
// known from the tracker.
func (c *Chain) VerifyTransaction(tx *Transaction, wallets *WalletDirectory) Verdict {
	if c.TransactionExistsLocked(tx.ID) {
		return Verdict{Reason: Duplicate}
	}
	if _, ok := wallets.All[tx.Recipient]; !ok {
		return Verdict{Reason: UnknownRecipient}
	}
	if _, ok := wallets.Active[tx.Recipient]; !ok {
		return Verdict{Reason: InactiveRecipient}
	}

	balance := c.BalanceLocked(tx.Sender)
	if tx.Amount > balance {
		return Verdict{Reason: InsufficientFunds, Balance: balance}
	}
	return Verdict{Reason: Ok, Balance: balance - tx.Amount}
}
