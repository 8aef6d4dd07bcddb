package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/modules/channel/telegram"
)

var botTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// setupAnswers holds what the interactive setup collects.
type setupAnswers struct {
	BotToken      string
	APIKeys       string // one per line
	Model         string
	Mode          string
	WebhookURL    string
	WebhookSecret string
	AllowedUsers  string
	AdminToken    string
}

// env maps the answers onto the environment variables the loader reads.
// Empty answers are omitted so existing values survive.
func (a setupAnswers) env() map[string]string {
	out := make(map[string]string)
	put := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	put(config.EnvBotToken, a.BotToken)
	if keys := splitLines(a.APIKeys); len(keys) > 0 {
		put(config.EnvAPIKeys, strings.Join(keys, ","))
	}
	put(config.EnvModel, a.Model)
	put(config.EnvMode, a.Mode)
	if a.Mode == telegram.ModeWebhook {
		put(config.EnvWebhookURL, a.WebhookURL)
		put(config.EnvWebhookSecret, a.WebhookSecret)
	}
	put(config.EnvAllowedUsers, a.AllowedUsers)
	put(config.EnvAdminToken, a.AdminToken)
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' }) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func setupCmd() *cobra.Command {
	var (
		output     string
		accessible bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively write a dotenv file with the bot's credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers := setupAnswers{Model: config.DefaultModel, Mode: telegram.ModePolling}
			if err := setupForm(&answers).WithAccessible(accessible).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled, nothing written.")
					return nil
				}
				return err
			}
			if err := writeEnvFile(output, answers.env()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s. Run `relaybot config check` to verify.\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", ".env", "Dotenv file to write")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain prompts instead of the terminal UI")
	return cmd
}

func setupForm(a *setupAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather, e.g. 123456:ABC-DEF").
				EchoMode(huh.EchoModePassword).
				Value(&a.BotToken).
				Validate(validateBotToken),
			huh.NewText().
				Title("Gemini API keys").
				Description("One per line. Keys are rotated when one is rate limited.").
				Value(&a.APIKeys).
				Validate(validateAPIKeys),
			huh.NewInput().
				Title("Model").
				Value(&a.Model),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How should Telegram deliver updates?").
				Options(
					huh.NewOption("Long polling (no public URL needed)", telegram.ModePolling),
					huh.NewOption("Webhook (needs a public HTTPS URL)", telegram.ModeWebhook),
				).
				Value(&a.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Public base URL").
				Description("Telegram will POST to <url>/webhook/<token>").
				Value(&a.WebhookURL).
				Validate(validateWebhookURL),
			huh.NewInput().
				Title("Webhook secret (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&a.WebhookSecret),
		).WithHideFunc(func() bool { return a.Mode != telegram.ModeWebhook }),
		huh.NewGroup(
			huh.NewInput().
				Title("Allowed Telegram user IDs or @usernames (optional)").
				Description("Comma separated. Empty makes the bot public.").
				Value(&a.AllowedUsers),
			huh.NewInput().
				Title("Admin API token (optional)").
				Description("Enables /api on the gateway.").
				EchoMode(huh.EchoModePassword).
				Value(&a.AdminToken),
		),
	)
}

func validateBotToken(s string) error {
	if !botTokenPattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("expected <digits>:<token>")
	}
	return nil
}

func validateAPIKeys(s string) error {
	if len(splitLines(s)) == 0 {
		return errors.New("at least one key is required")
	}
	return nil
}

func validateWebhookURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return errors.New("must be an absolute https URL")
	}
	return nil
}

// writeEnvFile merges values into the dotenv file at path, keeping keys it
// does not set. The file is written with owner-only permissions.
func writeEnvFile(path string, values map[string]string) error {
	merged, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		merged = make(map[string]string)
	}
	for k, v := range values {
		merged[k] = v
	}
	// A key list replaces individually numbered keys.
	if _, ok := values[config.EnvAPIKeys]; ok {
		delete(merged, config.EnvAPIKey)
		delete(merged, config.EnvAPIKey+"_2")
		delete(merged, config.EnvAPIKey+"_3")
	}

	content, err := godotenv.Marshal(merged)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
