// Package outstore defines the OutputStore contract the output manager
// actor consumes, plus an in-memory reference implementation. The spec
// places the persistent storage engine itself out of scope ("treated as
// an abstract OutputStore"); this package fixes the logical schema and
// gives the rest of the module something concrete to run against, the way
// pktwallet/wtxmgr fixes a logical schema of blocks/credits/pending
// transactions on top of a storage engine of its own.
package outstore

import (
	"time"

	"github.com/pkt-cash/outmgr/keychain"
)

// OutputFeatures carries the chain-visible attributes of an output besides
// its value and spending key.
type OutputFeatures struct {
	MaturityHeight uint64
	Coinbase       bool
}

// CoinbaseFeatures builds the feature set used for coinbase outputs.
func CoinbaseFeatures(maturityHeight uint64) OutputFeatures {
	return OutputFeatures{MaturityHeight: maturityHeight, Coinbase: true}
}

// UnblindedOutput is a spendable coin together with the wallet-side secret
// that unlocks it. Its identity on chain is its Commitment.
type UnblindedOutput struct {
	Value       uint64
	SpendingKey keychain.PrivateKey
	Features    OutputFeatures
}

// Commitment derives the deterministic fingerprint of this output.
func (u UnblindedOutput) Commitment() keychain.Commitment {
	return keychain.Commit(u.Value, u.SpendingKey)
}

// Partition identifies which of the six disjoint lifecycle states an
// output currently occupies.
type Partition int

const (
	Unspent Partition = iota
	ShortTermEncumbered
	Encumbered
	Spent
	PendingIncoming
	Invalid
)

func (p Partition) String() string {
	switch p {
	case Unspent:
		return "Unspent"
	case ShortTermEncumbered:
		return "ShortTermEncumbered"
	case Encumbered:
		return "Encumbered"
	case Spent:
		return "Spent"
	case PendingIncoming:
		return "PendingIncoming"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// PendingTransactionOutputs groups the outputs consumed and produced by one
// outstanding transaction, created by EncumberOutputs (on a send, a coin
// split, or a recipient/coinbase key issuance) and destroyed on confirm,
// cancel, or timeout.
type PendingTransactionOutputs struct {
	TxID                  uint64
	OutputsToBeSpent      []UnblindedOutput
	OutputsToBeReceived   []UnblindedOutput
	Timestamp             time.Time
	shortTerm             bool
}

// Balance is a derived snapshot of the wallet's funds.
type Balance struct {
	Available       uint64
	PendingIncoming uint64
	PendingOutgoing uint64
}
