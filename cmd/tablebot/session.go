package main

import (
	"errors"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long: `List, inspect, and remove conversation sessions. Sessions outlive a
process only when redis.url (TABLEBOT_REDIS_URL) is set.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage(cmd)
		if err != nil {
			return err
		}
		defer storage.Close()
		return cli.ListSessions(cmd.Context(), storage.Store, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		redact, _ := cmd.Flags().GetBool("redact")
		storage, err := openStorage(cmd)
		if err != nil {
			return err
		}
		defer storage.Close()
		return cli.InspectSession(cmd.Context(), storage.Store, args[0], format, redact, cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("give at least one session ID, or --all")
		}
		storage, err := openStorage(cmd)
		if err != nil {
			return err
		}
		defer storage.Close()
		if all {
			return cli.RemoveAllSessions(cmd.Context(), storage.Store, cmd.OutOrStdout())
		}
		return cli.RemoveSessions(cmd.Context(), storage.Store, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().StringP("output", "o", cli.FormatJSON, "Output format (json, yaml, mermaid)")
	sessionInspectCmd.Flags().Bool("redact", false, "Mask customer names and contact details")
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}

func openStorage(cmd *cobra.Command) (*cli.Storage, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewStorage(cmd.Context(), cfg.Redis)
}
