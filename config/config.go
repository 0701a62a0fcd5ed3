// Package config defines the output manager's configuration surface,
// tagged for github.com/jessevdk/go-flags the way the rest of the pktd
// family of services declares its flag structs.
package config

import (
	"time"

	flags "github.com/jessevdk/go-flags"
)

// DefaultBaseNodeQueryTimeout is used when the host process doesn't
// override it.
const DefaultBaseNodeQueryTimeout = 30 * time.Second

// OutputManagerServiceConfig is the configuration surface of §6: presently
// just the base-node query timeout, but declared as its own flags group so
// a host binary can embed it alongside its other subsystem configs.
type OutputManagerServiceConfig struct {
	BaseNodeQueryTimeout time.Duration `long:"basenodequerytimeout" description:"How long to wait for a base node UTXO-status response before retrying" default:"30s"`
}

// Default returns an OutputManagerServiceConfig with every field set to
// its documented default, for callers that construct the service without
// going through a flags.Parser.
func Default() OutputManagerServiceConfig {
	return OutputManagerServiceConfig{BaseNodeQueryTimeout: DefaultBaseNodeQueryTimeout}
}

// NewParser wires OutputManagerServiceConfig into a go-flags group the way
// pktconfig's callers attach their own subsystem configs, should a host
// process want to parse this service's flags directly off the command
// line instead of constructing a config.Default() and overriding fields.
func NewParser(cfg *OutputManagerServiceConfig) *flags.Parser {
	return flags.NewParser(cfg, flags.Default)
}
