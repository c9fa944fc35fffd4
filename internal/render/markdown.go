package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataquality-cli/internal/analysis"
	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// Markdown renders the whole report: summary, schema with missing and
// distinct counts, then every category page and numeric distribution.
func Markdown(r *analysis.Report) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}

	if tw := r.Temporal; tw != nil {
		b.WriteString("\n[TEMPORAL WINDOW]\n")
		b.WriteString(fmt.Sprintf("Date column: %s\n", safeName(tw.Column)))
		if tw.Window.Valid {
			b.WriteString(fmt.Sprintf("Window: %s .. %s (last %d years)\n",
				tw.Window.Cutoff.Format("02/01/2006"), tw.Window.Max.Format("02/01/2006"), tw.Window.Years))
		} else {
			b.WriteString("Window: none (no parseable dates)\n")
		}
		b.WriteString(fmt.Sprintf("Rows: %d in, %d unparseable, %d retained\n", tw.Input, tw.Unparsed, tw.Retained))
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Columns {
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		missPct := 0.0
		if r.Rows > 0 {
			missPct = float64(r.Nulls[c.Name]) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%; distinct %d)", name, c.Kind, r.Nulls[c.Name], missPct, r.Distinct[c.Name]))
		switch c.Kind {
		case dataset.KindNumeric:
			if s, ok := r.Numeric[c.Name]; ok && s.Count > 0 {
				b.WriteString(fmt.Sprintf(" — min %s, max %s, mean %s, std %s", num(s.Min), num(s.Max), num(s.Mean), num(s.Std)))
			}
		case dataset.KindCategorical:
			if pages := r.Pages[c.Name]; len(pages) > 1 {
				b.WriteString(fmt.Sprintf(" — %d pages of up to %d", len(pages), r.MaxCategories))
			}
		}
		b.WriteString("\n")
	}

	var body strings.Builder
	text := NewText(&body, 30)
	if cats := r.CategoricalColumns(); len(cats) > 0 {
		b.WriteString("\n[CATEGORY DISTRIBUTIONS]\n")
		for _, name := range cats {
			for _, p := range r.Pages[name] {
				_ = text.RenderPage(name, p)
			}
		}
		b.WriteString(body.String())
		body.Reset()
	}
	if nums := r.NumericColumns(); len(nums) > 0 {
		b.WriteString("\n[NUMERIC DISTRIBUTIONS]\n")
		for _, name := range nums {
			_ = text.RenderDistribution(name, r.Numeric[name])
		}
		b.WriteString(body.String())
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
