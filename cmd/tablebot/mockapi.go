package main

import (
	"context"

	"github.com/aretw0/tablebot/internal/cli"
	"github.com/aretw0/tablebot/pkg/adapters/fakeapi"
	"github.com/spf13/cobra"
)

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Run an in-memory restaurant booking API",
	Long: `Starts a local implementation of the booking API endpoints used by
tablebot, storing bookings in memory. Point api.base_url at it to chat
without a real backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		capacity, _ := cmd.Flags().GetInt("slot-capacity")
		maxParty, _ := cmd.Flags().GetInt("max-party")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunMockAPI(sigCtx, cfg.Mock.Addr, logger,
			fakeapi.WithRestaurant(cfg.API.Restaurant),
			fakeapi.WithToken(cfg.API.Token),
			fakeapi.WithSlotCapacity(capacity),
			fakeapi.WithMaxPartySize(maxParty),
		)
	},
}

func init() {
	rootCmd.AddCommand(mockAPICmd)

	mockAPICmd.Flags().String("addr", ":8547", "Address to listen on")
	mockAPICmd.Flags().Int("slot-capacity", 4, "Bookings accepted per time slot")
	mockAPICmd.Flags().Int("max-party", 8, "Largest party size accepted")

	_ = v.BindPFlag("mock.addr", mockAPICmd.Flags().Lookup("addr"))
}
