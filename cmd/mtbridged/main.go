// Package main is the entry point for the MetaTrader bridge daemon.
package main

import (
	"os"

	"github.com/pingleware/metratrader-bridge/cmd/mtbridged/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
