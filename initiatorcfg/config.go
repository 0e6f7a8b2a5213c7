// Package initiatorcfg holds the runtime configuration for the initiator
// core and the initiatorctl demo driver: everything that isn't fixed at
// compile time (lock-expiry window, log level, PRNG seed, metrics address)
// but isn't part of the pure transition function's inputs either.
package initiatorcfg

import (
	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLockExpiryGrace = 50
	defaultLogLevel        = "info"
	defaultPRNGSeed        = 1
)

// Config is the top-level configuration for initiatorctl, attached to the
// command-line parser as one named group (see RegisterFlags).
type Config struct {
	LockExpiryGrace uint64 `long:"lockexpirygrace" description:"blocks past the current tip a freshly selected route's lock expires at"`
	LogLevel        string `long:"loglevel" description:"subsystem log level (trace, debug, info, warn, error, critical, off)"`
	PRNGSeed        int64  `long:"prngseed" description:"seed for the deterministic route-selection PRNG"`
	MetricsAddr     string `long:"metricsaddr" description:"parsed but not read by initiatorctl; the metrics subcommand takes its own --addr"`
}

// DefaultConfig returns a Config populated with this package's defaults,
// the values RegisterFlags falls back to absent an override.
func DefaultConfig() *Config {
	return &Config{
		LockExpiryGrace: defaultLockExpiryGrace,
		LogLevel:        defaultLogLevel,
		PRNGSeed:        defaultPRNGSeed,
	}
}

// RegisterFlags adds c's fields to parser as flags, defaults already
// applied by DefaultConfig. Mirrors lnd.go's use of go-flags.NewParser
// over a single composed Config struct.
func (c *Config) RegisterFlags(parser *flags.Parser) error {
	_, err := parser.AddGroup("Initiator", "Initiator core options", c)
	return err
}

// LogLevelValue parses c.LogLevel into a btclog.Level, falling back to
// Info on an unrecognized value rather than failing startup over a typo.
func (c *Config) LogLevelValue() btclog.Level {
	level, ok := btclog.LevelFromString(c.LogLevel)
	if !ok {
		return btclog.LevelInfo
	}
	return level
}
