package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mtbridged",
	Short: "REST bridge between MetaTrader terminals and external strategies",
	Long: `mtbridged keeps a session-indexed table of quotes, account data, trade
commands and execution results shared between MetaTrader terminals and
external trading programs, and serves it over HTTP.

Terminals attach with /Initialize, push prices and history, poll for trade
commands and report results. Strategies read the same table and queue
commands. Table events are streamed to WebSocket clients on /ws.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml",
		"path to configuration file (empty for built-in defaults)")
}
