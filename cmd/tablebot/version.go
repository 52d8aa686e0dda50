package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tablebot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tablebot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tablebot version %s\n", strings.TrimSpace(tablebot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
