package dataset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseOptions controls how raw text records become typed columns.
type ParseOptions struct {
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// NullTokens are treated as missing in addition to empty strings.
	// If nil, DefaultNullTokens is used.
	NullTokens []string
	// Kinds pins the kind of named columns instead of inferring it.
	Kinds map[string]Kind
	// SplitUnits moves a unit suffix such as "Mass [mg/L]" out of the column
	// name and into Column.Unit.
	SplitUnits bool
}

// DefaultNullTokens mirrors the markers most CSV exporters write for missing cells.
var DefaultNullTokens = []string{
	"NA", "N/A", "n/a", "NaN", "nan", "-nan", "NULL", "null", "None", "#N/A", "<NA>",
}

// FromRecords builds a Dataset from a header and raw string rows. Short rows are
// padded with nulls; extra cells are ignored.
func FromRecords(name string, header []string, rows [][]string, opt ParseOptions) (*Dataset, error) {
	nulls := opt.NullTokens
	if nulls == nil {
		nulls = DefaultNullTokens
	}
	isNull := make(map[string]struct{}, len(nulls))
	for _, t := range nulls {
		isNull[t] = struct{}{}
	}

	names := headerNames(header)
	cols := make([]Column, len(names))
	for j, hn := range names {
		clean, unit := hn, ""
		if opt.SplitUnits {
			clean, unit = splitUnits(hn)
		}
		vals := make([]Value, len(rows))
		for i, rec := range rows {
			if j >= len(rec) {
				vals[i] = Null()
				continue
			}
			v := strings.TrimSpace(rec[j])
			if _, ok := isNull[v]; ok || v == "" {
				vals[i] = Value{Raw: v, Null: true}
				continue
			}
			vals[i] = Text(v)
		}
		cols[j] = Column{Name: clean, Unit: unit, Values: vals}
	}
	// Unit extraction can collapse two headers onto one name; keep the originals then.
	seen := map[string]int{}
	for j := range cols {
		seen[cols[j].Name]++
	}
	for j := range cols {
		if seen[cols[j].Name] > 1 {
			cols[j].Name = names[j]
			cols[j].Unit = ""
		}
	}
	for j := range cols {
		kind, pinned := opt.Kinds[cols[j].Name]
		if !pinned {
			kind = Infer(cols[j].Values, opt)
		}
		cols[j].Kind = kind
		if err := Coerce(&cols[j], opt); err != nil {
			return nil, err
		}
		if kind == KindNumeric && cols[j].Unit == "" && hasPercent(cols[j].Values) {
			cols[j].Unit = "%"
		}
	}
	return New(name, cols...)
}

// Infer classifies raw values. A column with no non-null values is numeric,
// matching how an all-missing column loads as floating point NaN.
func Infer(vals []Value, opt ParseOptions) Kind {
	var nonNull, numCnt, dtCnt, boolCnt int
	for _, v := range vals {
		if v.Null {
			continue
		}
		nonNull++
		if _, ok := ParseNumber(v.Raw, opt); ok {
			numCnt++
			continue
		}
		if isBool(v.Raw) {
			boolCnt++
			continue
		}
		if _, ok := ParseDate(v.Raw); ok {
			dtCnt++
		}
	}
	switch {
	case nonNull == 0 || numCnt == nonNull:
		return KindNumeric
	case boolCnt == nonNull:
		return KindUnknown
	case dtCnt == nonNull:
		return KindTemporal
	default:
		return KindCategorical
	}
}

// Coerce fills Num or Time on every non-null value of c according to c.Kind.
// Values that do not parse under a pinned kind become null.
func Coerce(c *Column, opt ParseOptions) error {
	for i, v := range c.Values {
		if v.Null {
			continue
		}
		switch c.Kind {
		case KindNumeric:
			x, ok := ParseNumber(v.Raw, opt)
			if !ok {
				c.Values[i] = Value{Raw: v.Raw, Null: true}
				continue
			}
			c.Values[i].Num = x
		case KindTemporal:
			t, ok := ParseDate(v.Raw)
			if !ok {
				c.Values[i] = Value{Raw: v.Raw, Null: true}
				continue
			}
			c.Values[i].Time = t
		case KindCategorical, KindUnknown:
		default:
			return fmt.Errorf("column %q: unsupported kind %d", c.Name, c.Kind)
		}
	}
	return nil
}

// headerNames fills blank headers and de-duplicates repeated ones with a
// numeric suffix ("a", "a.1", "a.2").
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := map[string]bool{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// ParseNumber parses a locale-formatted number, tolerating thousands
// separators and a trailing percent sign.
func ParseNumber(s string, opt ParseOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if strings.HasPrefix(strings.TrimLeft(raw, "+-"), "0x") || strings.HasPrefix(strings.TrimLeft(raw, "+-"), "0X") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Day-first layouts come before the unambiguous year-first ones so that
// 03/04/2020 reads as 3 April.
var dateLayouts = []string{
	"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006", "2.1.2006",
	"02/01/2006 15:04", "02/01/2006 15:04:05", "2/1/2006 15:04", "2/1/2006 15:04:05",
	"02-01-2006 15:04:05", "02.01.2006 15:04:05",
	"2006-01-02", "2006/01/02", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"2006-01-02T15:04:05", time.RFC3339, time.RFC3339Nano,
}

// ParseDate parses s in day/month/year order, falling back to ISO forms.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasPercent(vals []Value) bool {
	for _, v := range vals {
		if !v.Null && strings.HasSuffix(v.Raw, "%") {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	switch s {
	case "true", "false", "True", "False", "TRUE", "FALSE":
		return true
	}
	return false
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
