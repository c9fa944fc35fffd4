package profile

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnStatistics is the descriptive summary of a numeric column. Aggregates
// that are undefined for the sample size are NaN.
type ColumnStatistics struct {
	Count     int     `json:"count" yaml:"count"`
	Mean      float64 `json:"mean" yaml:"mean"`
	Std       float64 `json:"std" yaml:"std"`
	Min       float64 `json:"min" yaml:"min"`
	Q25       float64 `json:"q25" yaml:"q25"`
	Median    float64 `json:"median" yaml:"median"`
	Q75       float64 `json:"q75" yaml:"q75"`
	Max       float64 `json:"max" yaml:"max"`
	Skew      float64 `json:"skew" yaml:"skew"`
	Histogram []Bin   `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// Bin counts values in [Lower, Upper); the last bin also holds the maximum.
type Bin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

// MarshalJSON writes undefined aggregates as null since JSON has no NaN.
func (s ColumnStatistics) MarshalJSON() ([]byte, error) {
	num := func(f float64) *float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	}
	return json.Marshal(struct {
		Count     int      `json:"count"`
		Mean      *float64 `json:"mean"`
		Std       *float64 `json:"std"`
		Min       *float64 `json:"min"`
		Q25       *float64 `json:"q25"`
		Median    *float64 `json:"median"`
		Q75       *float64 `json:"q75"`
		Max       *float64 `json:"max"`
		Skew      *float64 `json:"skew"`
		Histogram []Bin    `json:"histogram,omitempty"`
	}{s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Median), num(s.Q75), num(s.Max), num(s.Skew), s.Histogram})
}

// Describe computes the count, mean, sample standard deviation, five-number
// summary, skewness and histogram of vals. bins <= 0 picks Sturges' rule.
func Describe(vals []float64, bins int) ColumnStatistics {
	nan := math.NaN()
	s := ColumnStatistics{Count: len(vals), Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan, Skew: nan}
	if len(vals) == 0 {
		return s
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Mean, _ = stats.Mean(sorted)
	s.Min, _ = stats.Min(sorted)
	s.Max, _ = stats.Max(sorted)
	if len(sorted) > 1 {
		s.Std, _ = stats.StandardDeviationSample(sorted)
	}
	if len(sorted) > 2 {
		s.Skew = stat.Skew(sorted, nil)
	}
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	s.Histogram = histogram(sorted, bins)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func histogram(sorted []float64, bins int) []Bin {
	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(n)))) + 1
	}
	if lo == hi {
		bins = 1
	}
	dividers := make([]float64, bins+1)
	if lo == hi {
		dividers[0], dividers[1] = lo, hi
	} else {
		floats.Span(dividers, lo, hi)
	}
	top := dividers[bins]
	// stat.Histogram treats the last divider as exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = top
	return out
}
