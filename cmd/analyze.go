package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataquality-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/dataquality-cli/internal/config"
	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
	"github.com/KaramelBytes/dataquality-cli/internal/loader"
	"github.com/KaramelBytes/dataquality-cli/internal/render"
	"github.com/KaramelBytes/dataquality-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath    string
	anaFormat        string
	anaDateColumn    string
	anaMaxCategories int
	anaWindowYears   int
	anaBins          int
	anaDelimiter     string
	anaDecimal       string
	anaThousands     string
	anaNullValues    []string
	anaKinds         []string
	anaSplitUnits    bool
	anaSheetName     string
	anaSheetIndex    int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/XLSX file and print a data-quality report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := effectiveConfig()
		f := cmd.Flags()

		acfg := analysis.Config{
			DateColumn:    c.DateColumn,
			MaxCategories: c.MaxCategories,
			WindowYears:   c.WindowYears,
			HistogramBins: c.HistogramBins,
		}
		if f.Changed("date-column") {
			acfg.DateColumn = anaDateColumn
		}
		if f.Changed("max-categories") {
			acfg.MaxCategories = anaMaxCategories
		}
		if f.Changed("window-years") {
			acfg.WindowYears = anaWindowYears
		}
		if f.Changed("bins") {
			acfg.HistogramBins = anaBins
		}

		opt := loader.Options{SheetName: anaSheetName, SheetIndex: anaSheetIndex}
		delim, decimal, thousands := c.Delimiter, c.DecimalSeparator, c.ThousandsSeparator
		if f.Changed("delimiter") {
			delim = anaDelimiter
		}
		if f.Changed("decimal") {
			decimal = anaDecimal
		}
		if f.Changed("thousands") {
			thousands = anaThousands
		}
		var err error
		if opt.Delimiter, err = parseDelimiter(delim); err != nil {
			return err
		}
		if opt.Parse.DecimalSeparator, err = parseDecimal(decimal); err != nil {
			return err
		}
		if opt.Parse.ThousandsSeparator, err = parseThousands(thousands); err != nil {
			return err
		}
		if len(c.NullValues) > 0 {
			opt.Parse.NullTokens = append(append([]string{}, dataset.DefaultNullTokens...), c.NullValues...)
		}
		if len(anaNullValues) > 0 {
			base := opt.Parse.NullTokens
			if base == nil {
				base = append([]string{}, dataset.DefaultNullTokens...)
			}
			opt.Parse.NullTokens = append(base, anaNullValues...)
		}
		opt.Parse.SplitUnits = c.SplitUnits
		if f.Changed("split-units") {
			opt.Parse.SplitUnits = anaSplitUnits
		}
		if opt.Parse.Kinds, err = parseKinds(anaKinds); err != nil {
			return err
		}

		format := c.OutputFormat
		if f.Changed("format") {
			format = anaFormat
		}

		log := logger.WithField("file", filepath.Base(path))
		d, err := loader.Load(path, opt)
		if err != nil {
			return err
		}
		log.WithField("rows", d.Rows()).Debug("dataset loaded")

		rep, err := analysis.New(log).Run(d, acfg)
		if err != nil {
			return err
		}
		for _, w := range rep.Warnings {
			log.Warn(w)
		}

		var buf bytes.Buffer
		if err := render.Write(&buf, rep, format); err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "report format: markdown|json|yaml")
	analyzeCmd.Flags().StringVar(&anaDateColumn, "date-column", "", "day-first date column; keeps only the trailing --window-years")
	analyzeCmd.Flags().IntVar(&anaMaxCategories, "max-categories", 10, "entries per category page")
	analyzeCmd.Flags().IntVar(&anaWindowYears, "window-years", 10, "width of the trailing date window in years")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 0, "histogram bins for numeric columns (0 = Sturges)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	analyzeCmd.Flags().StringSliceVar(&anaNullValues, "null-values", nil, "extra tokens treated as missing (repeatable)")
	analyzeCmd.Flags().StringSliceVar(&anaKinds, "kind", nil, "pin a column kind, e.g. --kind zip=categorical (repeatable)")
	analyzeCmd.Flags().BoolVar(&anaSplitUnits, "split-units", false, "move unit suffixes like 'Mass (mg/L)' out of column names")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// effectiveConfig returns the loaded config or built-in defaults.
func effectiveConfig() cfgpkg.Global {
	if cfg != nil {
		return *cfg
	}
	def := analysis.DefaultConfig()
	return cfgpkg.Global{
		MaxCategories: def.MaxCategories,
		WindowYears:   def.WindowYears,
		OutputFormat:  render.FormatMarkdown,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
	}
}

func parseThousands(s string) (rune, error) {
	if s == " " {
		return ' ', nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case "space":
		return ' ', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", s)
	}
}

func parseKinds(pairs []string) (map[string]dataset.Kind, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]dataset.Kind, len(pairs))
	for _, p := range pairs {
		name, kind, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --kind %q (use column=kind)", p)
		}
		k, err := dataset.ParseKind(strings.TrimSpace(kind))
		if err != nil {
			return nil, fmt.Errorf("invalid --kind %q: %w", p, err)
		}
		out[strings.TrimSpace(name)] = k
	}
	return out, nil
}
