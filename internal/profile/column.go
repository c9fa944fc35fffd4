// Package profile computes per-column data-quality statistics: missing and
// distinct counts, numeric summaries and ranked categorical value counts.
package profile

import (
	"fmt"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// Options tunes the column profiler.
type Options struct {
	// HistogramBins sets the bin count of numeric histograms; 0 uses Sturges' rule.
	HistogramBins int
}

// Profile holds the per-column counts for one table.
type Profile struct {
	Nulls    map[string]int
	Distinct map[string]int
	Numeric  map[string]ColumnStatistics
}

// Columns counts nulls and distinct values for every column and describes
// the numeric ones. Other kinds are left out of Numeric.
func Columns(t dataset.Table, opt Options) (Profile, error) {
	infos := t.Columns()
	p := Profile{
		Nulls:    make(map[string]int, len(infos)),
		Distinct: make(map[string]int, len(infos)),
		Numeric:  make(map[string]ColumnStatistics),
	}
	for _, c := range infos {
		vals, err := t.Values(c.Name)
		if err != nil {
			return Profile{}, fmt.Errorf("profile %q: %w", c.Name, err)
		}
		nulls, distinct := NullsAndDistinct(vals, c.Kind)
		p.Nulls[c.Name] = nulls
		p.Distinct[c.Name] = distinct

		switch c.Kind {
		case dataset.KindNumeric:
			p.Numeric[c.Name] = Describe(numbers(vals), opt.HistogramBins)
		case dataset.KindCategorical, dataset.KindTemporal, dataset.KindUnknown:
		}
	}
	return p, nil
}

// NullsAndDistinct returns the number of null cells and of distinct non-null values.
func NullsAndDistinct(vals []dataset.Value, kind dataset.Kind) (nulls, distinct int) {
	seen := make(map[string]struct{})
	for _, v := range vals {
		if v.Null {
			nulls++
			continue
		}
		seen[v.Key(kind)] = struct{}{}
	}
	return nulls, len(seen)
}

func numbers(vals []dataset.Value) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !v.Null {
			out = append(out, v.Num)
		}
	}
	return out
}
