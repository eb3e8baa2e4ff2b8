package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pergola",
	Short: "Pergola is a hook-extensible workflow state machine runtime",
	Long:  `Pergola advances a workflow state machine from a resolved transition table, running state-scoped hooks around each transition and emitting an ordered domain-event stream.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
}
