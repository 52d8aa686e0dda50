package main

import (
	"context"
	"os"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the booking assistant in the terminal",
	Long: `Starts an interactive conversation. Type 'quit' or 'exit' to leave.

With --json, each input line is {"utterance": "..."} (or plain text) and each
reply is one JSON object, for driving the assistant from scripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")
		fresh, _ := cmd.Flags().GetBool("fresh")
		plain, _ := cmd.Flags().GetBool("plain")
		audit, _ := cmd.Flags().GetBool("audit")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger, cli.AppOptions{Audit: audit})
		if err != nil {
			return err
		}
		defer app.Close()

		// Piped input means a script is talking; skip the banner and prompts.
		stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
		stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
		if !stdinTTY && !jsonMode {
			headless = true
		}
		width := 0
		if stdoutTTY {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
		}

		return cli.RunChat(sigCtx, app, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Headless:  headless,
			Fresh:     fresh,
			Markdown:  stdoutTTY && !plain,
			Width:     width,
			In:        os.Stdin,
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session ID to create or resume")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().Bool("headless", false, "No banner, greeting or prompt")
	chatCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	chatCmd.Flags().Bool("plain", false, "Print replies without markdown rendering")
	chatCmd.Flags().Bool("audit", false, "Log every turn and booking API call")
}
