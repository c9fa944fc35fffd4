// Package render turns an analysis.Report into human or machine readable output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataquality-cli/internal/analysis"
	"github.com/KaramelBytes/dataquality-cli/internal/profile"
)

// Renderer produces one bounded output unit per category page and one
// distribution summary per numeric column.
type Renderer interface {
	RenderPage(column string, page profile.CategoryPage) error
	RenderDistribution(column string, stats profile.ColumnStatistics) error
}

// Walk feeds every categorical page and numeric summary of rep to r, in
// table column order.
func Walk(rep *analysis.Report, r Renderer) error {
	for _, name := range rep.CategoricalColumns() {
		for _, p := range rep.Pages[name] {
			if err := r.RenderPage(name, p); err != nil {
				return fmt.Errorf("render page %d of %q: %w", p.Index, name, err)
			}
		}
	}
	for _, name := range rep.NumericColumns() {
		if err := r.RenderDistribution(name, rep.Numeric[name]); err != nil {
			return fmt.Errorf("render distribution of %q: %w", name, err)
		}
	}
	return nil
}

// Formats accepted by Write.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Write encodes rep to w in the named format.
func Write(w io.Writer, rep *analysis.Report, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown, "md":
		_, err := io.WriteString(w, Markdown(rep))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s (use markdown|json|yaml)", format)
	}
}

// Text writes pages and distributions as plain-text bar listings.
type Text struct {
	w     io.Writer
	width int
}

// NewText returns a Text renderer whose longest bar is width runes wide.
func NewText(w io.Writer, width int) *Text {
	if width <= 0 {
		width = 30
	}
	return &Text{w: w, width: width}
}

func (t *Text) RenderPage(column string, page profile.CategoryPage) error {
	var b strings.Builder
	if page.Total > 1 {
		b.WriteString(fmt.Sprintf("### %s (part %d/%d)\n", safeName(column), page.Index, page.Total))
	} else {
		b.WriteString(fmt.Sprintf("### %s\n", safeName(column)))
	}
	top := 0
	label := 0
	for _, e := range page.Entries {
		top = max(top, e.Count)
		label = max(label, len([]rune(clip(safeVal(e.Value), 40))))
	}
	for _, e := range page.Entries {
		v := clip(safeVal(e.Value), 40)
		b.WriteString(fmt.Sprintf("%-*s %s %d\n", label, v, t.bar(e.Count, top), e.Count))
	}
	b.WriteString("\n")
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) RenderDistribution(column string, s profile.ColumnStatistics) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("### %s\n", safeName(column)))
	if s.Count == 0 {
		b.WriteString("(no values)\n\n")
		_, err := io.WriteString(t.w, b.String())
		return err
	}
	b.WriteString(fmt.Sprintf("count %d, mean %s, std %s, skew %s\n", s.Count, num(s.Mean), num(s.Std), num(s.Skew)))
	b.WriteString(fmt.Sprintf("min %s | q25 %s | median %s | q75 %s | max %s\n", num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max)))
	top := 0
	for _, bin := range s.Histogram {
		top = max(top, bin.Count)
	}
	for _, bin := range s.Histogram {
		b.WriteString(fmt.Sprintf("[%10s, %10s) %s %d\n", num(bin.Lower), num(bin.Upper), t.bar(bin.Count, top), bin.Count))
	}
	b.WriteString("\n")
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) bar(n, top int) string {
	if top <= 0 || n <= 0 {
		return ""
	}
	w := int(math.Round(float64(n) * float64(t.width) / float64(top)))
	return strings.Repeat("█", max(w, 1))
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", f)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
