package syncoordinator

import (
	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/pktd/btcutil/er"
)

// FetchUtxos is the single outbound message type this service ever sends,
// directed at the base node's public key with encryption=none.
type FetchUtxos struct {
	RequestKey uint64
	Hashes     [][32]byte
}

// BaseNodeMessenger is the opaque outbound-messaging capability: whatever
// peer-to-peer transport actually carries a FetchUtxos to the base node
// public key. The base-node node-selection state machine and the p2p
// transport itself are out of scope; this is the whole of the contract
// this service needs from them.
type BaseNodeMessenger interface {
	SendDirectMessage(to keychain.PublicKey, msg FetchUtxos) er.R
}

// TimeoutScheduler lets SyncCoordinator arrange for a timeout ticket to
// arrive on the actor loop's timeout stream after a delay, without owning
// the timer mechanism itself.
type TimeoutScheduler interface {
	ScheduleTimeout(requestKey uint64)
}
