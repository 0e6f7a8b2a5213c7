// initiatorctl is a small demo driver for the initiator core: it wires a
// Config, an in-memory channel.Mem, and a deterministic PRNG together and
// replays a scripted scenario through initiator.Transition, printing every
// effect as it's produced. Modeled on cmd/lncli's urfave/cli command
// table, trimmed to a single binary with no RPC client.
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/hashlock/initiator/initiator"
	"github.com/hashlock/initiator/initiatorcfg"
	flags "github.com/jessevdk/go-flags"
	"github.com/urfave/cli"
)

// cfg holds the parsed global configuration, set once in main before the
// cli.App dispatches to a subcommand.
var cfg = initiatorcfg.DefaultConfig()

// rootOptions is the parser's top-level group; initiatorcfg.Config is
// attached to it as a named group via RegisterFlags, mirroring lnd.go's
// pattern of composing subsystem configs under one parser instead of one
// flat struct.
type rootOptions struct{}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[initiatorctl] %v\n", err)
	os.Exit(1)
}

func main() {
	parser := flags.NewParser(&rootOptions{}, flags.Default|flags.IgnoreUnknown)
	if err := cfg.RegisterFlags(parser); err != nil {
		fatal(err)
	}

	remaining, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	backend := btclog.NewBackend(os.Stdout)
	logger := backend.Logger("INIT")
	logger.SetLevel(cfg.LogLevelValue())
	initiator.UseLogger(logger)

	app := cli.NewApp()
	app.Name = "initiatorctl"
	app.Usage = "drive the initiator payment orchestrator from the command line"
	app.Commands = []cli.Command{
		runCommand,
		metricsCommand,
	}

	args := append([]string{os.Args[0]}, remaining...)
	if err := app.Run(args); err != nil {
		fatal(err)
	}
}
