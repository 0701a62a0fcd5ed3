package outputmanager

import (
	"github.com/pkt-cash/outmgr/keychain"
	"github.com/pkt-cash/outmgr/outstore"
	"github.com/pkt-cash/outmgr/syncoordinator"
	"github.com/pkt-cash/outmgr/txassembly"
	"github.com/pkt-cash/pktd/pktlog"
)

var log pktlog.Logger

func init() {
	DisableLog()
}

// DisableLog disables log output for the output manager and every
// subsystem package it owns.
func DisableLog() {
	UseLogger(pktlog.Disabled)
}

// UseLogger wires logger into the output manager and every subsystem
// package it owns, the way pktwallet/wallet/log.go's UseLogger fans a
// single logger out to waddrmgr/wtxmgr/migration.
func UseLogger(logger pktlog.Logger) {
	log = logger
	keychain.UseLogger(logger)
	outstore.UseLogger(logger)
	txassembly.UseLogger(logger)
	syncoordinator.UseLogger(logger)
}
