package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/dataquality-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dataquality configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if cfg.DateColumn != "" {
			fmt.Fprintf(out, "date_column: %s\n", cfg.DateColumn)
		}
		fmt.Fprintf(out, "max_categories: %d\n", cfg.MaxCategories)
		fmt.Fprintf(out, "window_years: %d\n", cfg.WindowYears)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		if len(cfg.NullValues) > 0 {
			fmt.Fprintf(out, "null_values: %s\n", strings.Join(cfg.NullValues, ", "))
		}
		fmt.Fprintf(out, "split_units: %t\n", cfg.SplitUnits)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "date_column":
			next.DateColumn = val
		case "max_categories", "window_years", "histogram_bins":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "max_categories":
				next.MaxCategories = i
			case "window_years":
				next.WindowYears = i
			default:
				next.HistogramBins = i
			}
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			next.Delimiter = val
		case "decimal_separator":
			if _, err := parseDecimal(val); err != nil {
				return err
			}
			next.DecimalSeparator = val
		case "thousands_separator":
			if _, err := parseThousands(val); err != nil {
				return err
			}
			next.ThousandsSeparator = val
		case "null_values":
			next.NullValues = nil
			for _, tok := range strings.Split(val, ",") {
				if tok = strings.TrimSpace(tok); tok != "" {
					next.NullValues = append(next.NullValues, tok)
				}
			}
		case "split_units":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for split_units: %v", val)
			}
			next.SplitUnits = b
		case "output_format":
			next.OutputFormat = strings.ToLower(val)
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_format":
			next.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
