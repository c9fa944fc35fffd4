// Package temporal restricts a dataset to a trailing window of years keyed on
// a date column.
package temporal

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// DefaultYears is the width of the trailing window.
const DefaultYears = 10

// Window is the inclusive range [Cutoff, Max] retained by a filter run.
// Valid is false when no row carried a parseable date.
type Window struct {
	Max    time.Time `json:"reference_max" yaml:"reference_max"`
	Cutoff time.Time `json:"cutoff" yaml:"cutoff"`
	Years  int       `json:"years" yaml:"years"`
	Valid  bool      `json:"valid" yaml:"valid"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return w.Valid && !t.Before(w.Cutoff)
}

// Result is the filtered dataset plus what the filter observed.
type Result struct {
	Data     *dataset.Dataset
	Window   Window
	Column   string
	Input    int // rows before filtering
	Unparsed int // rows dropped because the date did not parse
}

// Retained is the number of rows kept.
func (r *Result) Retained() int { return r.Data.Rows() }

// Filter keeps the rows of t whose date in column lies within the trailing
// DefaultYears window ending at the column's maximum date.
func Filter(t dataset.Table, column string) (*Result, error) {
	return FilterYears(t, column, DefaultYears)
}

// FilterYears is Filter with an explicit window width.
func FilterYears(t dataset.Table, column string, years int) (*Result, error) {
	if years <= 0 {
		return nil, fmt.Errorf("window years must be positive, got %d", years)
	}
	raw, err := t.Values(column)
	if err != nil {
		return nil, fmt.Errorf("temporal filter: %w", err)
	}
	info, _ := dataset.Lookup(t, column)

	parsed := make([]dataset.Value, len(raw))
	var (
		maxDate time.Time
		found   bool
	)
	res := &Result{Column: column, Input: t.Rows()}
	for i, v := range raw {
		ts, ok := parseValue(v, info.Kind)
		if !ok {
			parsed[i] = dataset.Value{Raw: v.Raw, Null: true}
			res.Unparsed++
			continue
		}
		parsed[i] = dataset.Value{Raw: v.Raw, Time: ts}
		if !found || ts.After(maxDate) {
			maxDate = ts
			found = true
		}
	}

	res.Window = Window{Years: years}
	var keep []int
	if found {
		res.Window = Window{Max: maxDate, Cutoff: SubtractYears(maxDate, years), Years: years, Valid: true}
		for i, v := range parsed {
			if !v.Null && res.Window.Contains(v.Time) {
				keep = append(keep, i)
			}
		}
	}

	infos := t.Columns()
	cols := make([]dataset.Column, 0, len(infos))
	for _, ci := range infos {
		src := parsed
		kind := dataset.KindTemporal
		if ci.Name != column {
			if src, err = t.Values(ci.Name); err != nil {
				return nil, fmt.Errorf("temporal filter: %w", err)
			}
			kind = ci.Kind
		}
		vals := make([]dataset.Value, len(keep))
		for j, i := range keep {
			vals[j] = src[i]
		}
		cols = append(cols, dataset.Column{Name: ci.Name, Kind: kind, Unit: ci.Unit, Values: vals})
	}
	name := column
	if n, ok := t.(interface{ Name() string }); ok {
		name = n.Name()
	}
	if res.Data, err = dataset.New(name, cols...); err != nil {
		return nil, fmt.Errorf("temporal filter: %w", err)
	}
	return res, nil
}

// parseValue reuses an already-parsed time on temporal columns so that
// filtering a filtered dataset yields the same rows.
func parseValue(v dataset.Value, kind dataset.Kind) (time.Time, bool) {
	if v.Null {
		return time.Time{}, false
	}
	if kind == dataset.KindTemporal && !v.Time.IsZero() {
		return v.Time, true
	}
	return dataset.ParseDate(v.Raw)
}

// SubtractYears moves t back by whole calendar years. A February 29 that has
// no counterpart in the target year lands on February 28 instead of rolling
// into March.
func SubtractYears(t time.Time, years int) time.Time {
	y := t.Year() - years
	d := t.Day()
	if last := daysIn(t.Month(), y); d > last {
		d = last
	}
	return time.Date(y, t.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
