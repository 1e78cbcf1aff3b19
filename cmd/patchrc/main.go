package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
)

func main() {
	// Setup logging
	setupLogging()
	ctx := log.Logger.WithContext(context.Background())

	// Create root options shared by all commands
	ropts := newRootOpts()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Rule-driven patcher for vkd3d-proton source trees",
		Long: `patchrc rewrites a vkd3d-proton checkout in place using profile-selected
rule groups: D3D12 capability upgrades, performance injections, GPU
identity spoofing and CPU feature gates, applied concurrently with
per-rule match accounting and an optional structured report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewApplyCmd(ropts),
		commands.NewRulesCmd(ropts),
		commands.NewVersionCmd(ropts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ropts.Console.Errorf("%v", err)
		os.Exit(1)
	}
}
