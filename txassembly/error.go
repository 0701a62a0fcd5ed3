package txassembly

import "github.com/pkt-cash/pktd/btcutil/er"

// Err identifies a category of error raised by this package.
var Err er.ErrorType = er.NewErrorType("txassembly.Err")

var (
	// ErrBuild wraps a rejection from the underlying TransactionBuilder.
	// No output has changed partition and no pending record has been
	// created when this is returned; the key index may already have been
	// advanced for a change or split output issued before the rejection.
	ErrBuild = Err.Code("ErrBuild")

	// ErrIncompleteTransaction is returned when a confirmation does not
	// match the pending record it claims to confirm.
	ErrIncompleteTransaction = Err.Code("ErrIncompleteTransaction")
)
