package txassembly

import (
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// CryptoFactories is the opaque cryptographic capability the spec places
// out of scope: whatever object the real commitment/range-proof machinery
// needs, threaded unchanged through every builder call. Per the spec's own
// design note, the service must hold exactly one instance and reuse it
// everywhere — CreateCoinSplit must not construct a fresh one.
type CryptoFactories interface {
	// Marker method only: callers never invoke factories directly, they
	// just pass the handle through to a TransactionBuilder.
	private()
}

// SenderParams configures a new outbound sender negotiation.
type SenderParams struct {
	RecipientCount int
	LockHeight     uint64
	FeePerGram     uint64
	Offset         [32]byte
	Nonce          [32]byte
	Message        string
}

// SenderTxProto is the opaque protocol handle handed back to a caller of
// PrepareToSendTransaction, to be driven by the transaction-service
// counterparty the output manager never talks to directly.
type SenderTxProto struct {
	TxID uint64
	Tx   interface{}
}

// SenderNegotiation is the in-progress state of one outbound transaction
// being built.
type SenderNegotiation interface {
	AddInput(o outstore.UnblindedOutput) er.R
	AddChangeOutput(o outstore.UnblindedOutput) er.R
	Build() (SenderTxProto, er.R)
}

// CoinSplitParams configures a coin-split transaction, which (unlike a
// sender negotiation) has no remote counter-party and is built and
// finalized in a single local step.
type CoinSplitParams struct {
	FeePerGram uint64
	LockHeight uint64
}

// FinalizedTransaction is the result of a locally-finalized transaction
// (coin splits, coinbase/recipient key issuance never reaches this type).
type FinalizedTransaction struct {
	TxID      uint64
	Tx        interface{}
	Fee       uint64
	UtxoTotal uint64
}

// CoinSplitNegotiation is the in-progress state of a coin-split build.
type CoinSplitNegotiation interface {
	AddInput(o outstore.UnblindedOutput) er.R
	AddOutput(o outstore.UnblindedOutput) er.R
	BuildAndFinalize() (FinalizedTransaction, er.R)
}

// TransactionBuilder is the opaque `TransactionBuilder` capability the
// spec describes: a collaborator this service drives but never implements.
type TransactionBuilder interface {
	NewSenderTransaction(factories CryptoFactories, p SenderParams) (SenderNegotiation, er.R)
	NewCoinSplitTransaction(factories CryptoFactories, p CoinSplitParams) (CoinSplitNegotiation, er.R)
}
