package syncoordinator

import "github.com/pkt-cash/pktd/btcutil/er"

// Err identifies a category of error raised by this package.
var Err er.ErrorType = er.NewErrorType("syncoordinator.Err")

var (
	// ErrNoBaseNodeKeys is returned when a sync is requested before
	// SetBaseNodePublicKey has ever been called.
	ErrNoBaseNodeKeys = Err.Code("ErrNoBaseNodeKeys")

	// ErrConversion marks a single malformed hash inside an otherwise
	// valid base-node response; the offending entry is dropped but the
	// rest of the response is still processed.
	ErrConversion = Err.Code("ErrConversion")
)
