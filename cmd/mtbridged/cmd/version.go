package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pingleware/metratrader-bridge/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("%s version %s (%s, %s)\n", info.Name, info.Version, info.Commit, info.GoVersion)
		fmt.Println(version.DllVersion(time.Now()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
