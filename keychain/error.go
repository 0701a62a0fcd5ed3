package keychain

import "github.com/pkt-cash/pktd/btcutil/er"

// Err identifies a category of error raised by this package.
var Err er.ErrorType = er.NewErrorType("keychain.Err")

var (
	// ErrStorage is returned when the backing KeyManagerState store fails
	// to persist or load the next-index counter.
	ErrStorage = Err.Code("ErrStorage")

	// ErrKeyManager is the code for a failed key derivation. Derivation in
	// this package cannot fail, so nothing here returns it; a key index that
	// could not be persisted is reported as ErrStorage.
	ErrKeyManager = Err.Code("ErrKeyManager")
)
