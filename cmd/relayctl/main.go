package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "relayctl",
	Short:         "Smoke client for the chat relay",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(tokenCmd(), sendCmd(), listenCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
