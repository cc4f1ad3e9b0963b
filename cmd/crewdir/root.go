package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/crewdir/internal/app"
	"github.com/heartmarshall/crewdir/pkg/ctxutil"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "crewdir",
		Short:         "Browse the crew marketplace directory",
		Long:          `crewdir searches the crew and talent directory, pages through results and manages your team.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// One correlation ID per invocation ties together the backend calls
		// of a single command.
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx, _ := ctxutil.EnsureRequestID(cmd.Context())
			cmd.SetContext(ctx)
		},
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level: debug, info, warn, error, off")

	root.AddCommand(
		newBrowseCmd(opts),
		newRolesCmd(opts),
		newTeamCmd(opts),
		newVersionCmd(),
	)
	return root
}

// engine wires the engine for one command invocation. Logs go to the
// command's stderr so they never mix with the listing.
func (o *rootOptions) engine(cmd *cobra.Command, view app.Options) (*app.Engine, error) {
	view.ConfigPath = o.configPath
	view.LogLevel = o.logLevel
	return app.Bootstrap(view, cmd.ErrOrStderr())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "crewdir", app.BuildVersion())
		},
	}
}
