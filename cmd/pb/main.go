// Package main provides the pb CLI entry point.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/config"
	"github.com/aquaticfungi/pubdb/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	storeFlag   string
	logLevel    string

	// cfg is the effective configuration, loaded before any command runs.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pb",
	Short: "Aquatic fungi publication database",
	Long: `pb ingests Web of Science spreadsheet exports into a SQLite publication
store and queries, exports and serves it.

All commands output JSON by default; pass --human for readable text.
Logs go to stderr.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pubdb/config.yml)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Path to the publications store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// loadConfig reads .env, the config file and the global flags, in
// increasing order of precedence, then installs the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		exitWithError(ExitConfigError, "loading .env: %v", err)
	}

	c, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if storeFlag != "" {
		c.StorePath = config.ExpandPath(storeFlag)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	cfg = c

	logging.Setup(cfg.LogLevel, os.Stderr)
	return nil
}
