package outstore

import (
	"time"

	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// OutputStore is the contract the output manager actor consumes. Every
// mutating method must be atomic with respect to concurrent readers: a
// partial failure must leave the store exactly as it was before the call.
//
// OutputStore also implements keychain.IndexPersister (IncrementKeyIndex),
// so a KeyManager can be handed a store directly.
type OutputStore interface {
	keychain.IndexPersister

	GetKeyManagerState() (keychain.KeyManagerState, er.R)
	SetKeyManagerState(state keychain.KeyManagerState) er.R

	// AddUnspentOutput inserts uo into Unspent, rejecting a duplicate
	// commitment with ErrDuplicate.
	AddUnspentOutput(uo UnblindedOutput) er.R

	// EncumberOutputs atomically moves spent into ShortTermEncumbered and
	// changeOutputs into PendingIncoming, creating a PendingTransactionOutputs
	// record keyed by txID. Every element of spent must currently be
	// Unspent or ErrConflict is returned and nothing is changed.
	EncumberOutputs(txID uint64, spent []UnblindedOutput, changeOutputs []UnblindedOutput) er.R

	// ConfirmEncumberedOutputs promotes the ShortTermEncumbered inputs of
	// txID to Encumbered. Idempotent: calling it again once already
	// promoted is a no-op, not an error.
	ConfirmEncumberedOutputs(txID uint64) er.R

	// ConfirmPendingTransactionOutputs moves txID's spent outputs to Spent
	// and its received outputs to Unspent, then deletes the pending
	// record. A second call for the same txID returns ErrUnknown.
	ConfirmPendingTransactionOutputs(txID uint64) er.R

	// CancelPendingTransactionOutputs returns txID's spent outputs to
	// Unspent, discards its received outputs, and deletes the pending
	// record. A second call for the same txID is a no-op, matching the
	// original service's idempotent cancel semantics.
	CancelPendingTransactionOutputs(txID uint64) er.R

	// TimeoutPendingTransactionOutputs applies cancel semantics to every
	// pending record older than period, returning the cancelled tx_ids.
	TimeoutPendingTransactionOutputs(period time.Duration) ([]uint64, er.R)

	// ClearShortTermEncumberances cancels every pending record still in
	// short-term state. Called once at startup.
	ClearShortTermEncumberances() er.R

	// InvalidateOutput moves the Unspent output with this commitment to
	// Invalid. ErrUnknown if no such Unspent output exists.
	InvalidateOutput(c keychain.Commitment) er.R

	FetchUnspent() ([]UnblindedOutput, er.R)
	FetchSpent() ([]UnblindedOutput, er.R)
	FetchInvalid() ([]UnblindedOutput, er.R)
	FetchPendingTransactions() ([]PendingTransactionOutputs, er.R)

	// GetBalance computes the derived balance view.
	GetBalance() (Balance, er.R)
}
