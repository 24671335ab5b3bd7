package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pingleware/metratrader-bridge/internal/app"
	"github.com/pingleware/metratrader-bridge/internal/config"
	"github.com/pingleware/metratrader-bridge/internal/logging"
)

var (
	serveListen string
	serveDemo   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge HTTP server",
	Long: `Start the session table and the HTTP/WebSocket server.

Examples:
  mtbridged serve -c config/config.yaml
  mtbridged serve --listen :3000 --demo`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "override api.listenAddress")
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "seed a demo session and simulate quotes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.API.ListenAddress = serveListen
	}
	if serveDemo {
		cfg.Demo.Enabled = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.New(cfg).Run(ctx)
}

// loadConfig falls back to defaults when the default path does not exist.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path != "" && !rootCmd.PersistentFlags().Changed("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if log, lerr := logging.Console("info"); lerr == nil {
				log.Warn("config_not_found_using_defaults", zap.String("path", path))
			}
			path = ""
		}
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
