package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/console"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootOpts creates the shared options with initialized dependencies
func newRootOpts() *opts.RootOpts {
	// User-facing output goes to stdout, diagnostics to stderr
	ui := console.New(os.Stdout, zerolog.InfoLevel)

	return &opts.RootOpts{
		ConfigFile: &configFile,
		Console:    ui,
	}
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", opts.DefaultConfigFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures the global zerolog logger. The level is raised
// to debug in PersistentPreRun once flags are parsed.
func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
}
