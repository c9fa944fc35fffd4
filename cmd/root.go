package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/dataquality-cli/internal/config"
	"github.com/KaramelBytes/dataquality-cli/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Shared logger, rebuilt on every config load
	logger = logging.New("info", "text")
)

var rootCmd = &cobra.Command{
	Use:   "dataquality",
	Short: "Profile tabular datasets: missing values, distinct counts, distributions",
	Long: `dataquality reads a CSV, TSV or XLSX file and produces a data-quality report:
per-column missing and distinct counts, numeric summaries, and ranked category
distributions split into pages. An optional date column restricts the report to
the trailing years before the most recent record.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataquality/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}

	level, format := "info", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	if debug {
		level = logrus.DebugLevel.String()
	}
	logger = logging.New(level, format)
}
