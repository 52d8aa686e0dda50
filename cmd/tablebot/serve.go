package main

import (
	"context"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket chat server",
	Long: `Serves the booking assistant over HTTP:

  POST /sessions/{id}/turns   {"utterance": "..."}
  GET  /sessions/{id}/ws      WebSocket chat
  GET  /metrics               Prometheus metrics

Set redis.url (TABLEBOT_REDIS_URL) to share sessions between replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		audit, _ := cmd.Flags().GetBool("audit")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger, cli.AppOptions{
			Registerer: prometheus.DefaultRegisterer,
			Audit:      audit,
		})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunServe(sigCtx, app, cfg.HTTP.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Float64("rate-limit", 5, "Turns per second allowed per session (0 disables)")
	serveCmd.Flags().Bool("audit", false, "Log every turn and booking API call")

	_ = v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("http.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
}
