package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingleware/metratrader-bridge/internal/auth"
)

// md5Cmd prints the same digest the /md5 route returns, for terminals that
// compare stored password hashes.
var md5Cmd = &cobra.Command{
	Use:   "md5 <password>",
	Short: "Print the MD5 hex digest of a password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(auth.MD5Hex(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(md5Cmd)
}
