// Package main is the entry point for the relaybot CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/relaybot/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand that loads configuration.
type globalFlags struct {
	configPath string
	envFiles   []string
}

func (g *globalFlags) runParams() app.RunParams {
	p := app.RunParams{
		ConfigPath: g.configPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
	if len(g.envFiles) > 0 {
		p.EnvFiles = g.envFiles
	}
	return p
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "relaybot",
		Short:         "A Telegram chat companion backed by Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to an optional YAML configuration file")
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "Dotenv files to read (default .env.local, .env)")

	root.AddCommand(
		versionCmd(),
		startCmd(flags),
		configCmd(flags),
		setupCmd(),
		serviceCmd(flags),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "relaybot %s (commit: %s, built: %s)\n", version, commit, date)
}

func startCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, flags.runParams())
		},
	}
}
