// Package cmd implements the partsync command tree.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/partforge/partsync/pkg/config"
	"github.com/partforge/partsync/pkg/logging"
)

var (
	configFile string

	flagVerbose     bool
	flagQuiet       bool
	flagDryRun      bool
	flagInteractive bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "partsync",
	Short: "Import supplier catalog records into an InvenTree inventory",
	Long: `Partsync searches electronic part suppliers for part numbers and
imports the results into an InvenTree inventory: parts, manufacturers,
supplier listings, parameters, price breaks, datasheets and images.

Matching is driven by a local categories file that maps supplier category
and parameter names onto your inventory's category tree and parameter
templates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./.partsync.yaml, then $HOME/.partsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "do not write anything to the inventory")
	rootCmd.PersistentFlags().BoolVarP(&flagInteractive, "interactive", "i", false, "prompt on ambiguous matches")
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = flagQuiet
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if cmd.Flags().Changed("interactive") {
		cfg.Interactive = flagInteractive
	}

	switch {
	case cfg.Quiet:
		logging.SetLevel(zerolog.WarnLevel)
	case cfg.Verbose:
		logging.SetLevel(zerolog.DebugLevel)
	default:
		logging.SetLevel(zerolog.InfoLevel)
	}

	return cfg, nil
}
