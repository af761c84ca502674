package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "surfalert",
	Short: "Surf condition scoring and alert delivery",
	Long: `Scores marine conditions for the Ceará surf spots, serves them over HTTP
and emails subscribers once per day when their alert preferences match.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newProcessCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
