package initiator

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger. It is disabled by default so
// the package can be imported before the host wires up real logging, the
// same convention every lnd subsystem (htlcswitch, contractcourt,
// channeldb, discovery) follows.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the subsystem logger used by this package. Should be
// called by the host before the first Transition call.
func UseLogger(logger btclog.Logger) {
	log = logger
}
