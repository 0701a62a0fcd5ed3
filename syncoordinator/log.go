package syncoordinator

import "github.com/pkt-cash/pktd/pktlog"

var log pktlog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = pktlog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger pktlog.Logger) {
	log = logger
}
