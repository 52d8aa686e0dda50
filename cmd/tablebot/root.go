package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/aretw0/tablebot/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v holds flag bindings; config.Load layers files and environment under them.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "tablebot",
	Short: "tablebot is a conversational front end for restaurant bookings",
	Long: `tablebot understands free-text requests such as "Is there availability on
2025-08-10 for 2 people?" and turns them into calls against the restaurant
booking API. It runs as a terminal chat, an HTTP/WebSocket server or an MCP
server, and ships an in-memory fake of the booking API for local use.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./tablebot.yaml when present)")
	flags.String("env-file", "", "Dotenv file to load (default ./.env when present)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
}

// loadConfig reads the configuration and builds the logger for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(v, config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
