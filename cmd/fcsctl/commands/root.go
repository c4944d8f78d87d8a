package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/printer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	service    string
	dryRun     bool
	noColor    bool
	timeout    time.Duration
}

// NewRootCmd builds the fcsctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fcsctl",
		Short: "fcsctl - device setup client for FCS control servers",
		Long: `fcsctl builds, validates and dispatches device setup payloads for an
FCS control server, and queries the devices it manages.

Requests travel over MQTT. The device map can be cached in Redis, and
every dispatch is recorded in a local SQLite history and optionally in
InfluxDB.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor || os.Getenv("NO_COLOR") != "" {
				printer.DisableColor()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default $FCS_CONFIG)")
	flags.StringVarP(&opts.service, "service", "s", "", "control server name, overrides fcs.service")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print server calls instead of sending them")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-call timeout, overrides fcs.timeout")

	cmd.AddCommand(
		newSchemaCmd(opts),
		newValidateCmd(opts),
		newSetupCmd(opts),
		newDevInfoCmd(opts),
		newStatusCmd(opts),
		newWaitCmd(opts),
		newHistoryCmd(opts),
		newStdCmd(opts),
		newAppCmd(opts),
	)
	return cmd
}

// Execute runs the command tree until it returns or SIGINT/SIGTERM cancels
// it. It is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// SetVersionInfo sets the version information reported by --version.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
