package outstore

import "github.com/pkt-cash/pktd/btcutil/er"

// Err identifies a category of error raised by this package.
var Err er.ErrorType = er.NewErrorType("outstore.Err")

var (
	// ErrStorage indicates the backing store itself failed; callers must
	// treat the attempted mutation as not having happened.
	ErrStorage = Err.Code("ErrStorage")

	// ErrDuplicate is returned by AddUnspentOutput when an output with the
	// same commitment is already known to the store.
	ErrDuplicate = Err.Code("ErrDuplicate")

	// ErrConflict is returned when an encumberance references an output
	// that is not presently in the partition the operation requires.
	ErrConflict = Err.Code("ErrConflict")

	// ErrUnknown is returned when an operation references a tx_id that has
	// no matching PendingTransactionOutputs record.
	ErrUnknown = Err.Code("ErrUnknown")
)
