package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/pkg/app"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var show bool
	check := &cobra.Command{
		Use:   "check",
		Short: "Resolve and validate the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(flags.runParams())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK\n")
			fmt.Fprintf(out, "  mode:      %s\n", cfg.Telegram.Mode)
			fmt.Fprintf(out, "  model:     %s\n", cfg.Gemini.Model)
			if cfg.Gemini.FallbackModel != "" {
				fmt.Fprintf(out, "  fallback:  %s\n", cfg.Gemini.FallbackModel)
			}
			fmt.Fprintf(out, "  api keys:  %d\n", len(cfg.Gemini.APIKeys))
			fmt.Fprintf(out, "  gateway:   %s\n", cfg.Gateway.Bind)
			if cfg.Telemetry.Enabled() {
				fmt.Fprintf(out, "  tracing:   %s\n", cfg.Telemetry.Endpoint)
			}

			if show {
				raw, err := config.Dump(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s", raw)
			}
			return nil
		},
	}
	check.Flags().BoolVar(&show, "show", false, "Print the effective configuration with secrets redacted")

	cmd.AddCommand(check)
	return cmd
}
