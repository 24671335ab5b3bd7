package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingleware/metratrader-bridge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage bridge configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  mtbridged config init -o config/config.yaml
  mtbridged config validate -c config/config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "config/config.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Created default configuration: %s\n", configInitOutput)
	fmt.Printf("Run with:\n  mtbridged serve -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Printf("Configuration valid: %s\n", configPath)
	fmt.Printf("  Env: %s (log level %s)\n", cfg.App.Env, cfg.App.LogLevel)
	fmt.Printf("  Sessions: %d (ticks %d)\n", cfg.Bridge.MaxSessions, cfg.Bridge.TickCapacity)
	fmt.Printf("  Listen: %s\n", cfg.API.ListenAddress)
	fmt.Printf("  Tracing: %t  Profiling: %t  Demo: %t\n", cfg.Tracing.Enabled, cfg.Profiling.Enabled, cfg.Demo.Enabled)
	return nil
}
