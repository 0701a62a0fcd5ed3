package selection

import "github.com/pkt-cash/pktd/btcutil/er"

// Err identifies a category of error raised by this package.
var Err er.ErrorType = er.NewErrorType("selection.Err")

// ErrNotEnoughFunds is returned when accumulating every available output
// still falls short of amount plus its own fee.
var ErrNotEnoughFunds = Err.Code("ErrNotEnoughFunds")
