package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Kind classifies a column and drives which statistics apply to it.
type Kind int

const (
	KindUnknown Kind = iota
	KindNumeric
	KindCategorical
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindTemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "numeric":
		return KindNumeric, nil
	case "categorical":
		return KindCategorical, nil
	case "temporal":
		return KindTemporal, nil
	case "unknown":
		return KindUnknown, nil
	}
	return KindUnknown, fmt.Errorf("unknown column kind %q", s)
}

// Value is a single nullable cell. Raw always holds the source text; Num and
// Time are populated according to the owning column's kind.
type Value struct {
	Raw  string
	Num  float64
	Time time.Time
	Null bool
}

func Null() Value            { return Value{Null: true} }
func Text(s string) Value    { return Value{Raw: s} }
func Number(f float64) Value { return Value{Raw: strconv.FormatFloat(f, 'g', -1, 64), Num: f} }
func Date(t time.Time) Value { return Value{Raw: t.Format(time.RFC3339), Time: t} }

// Key returns the identity used for distinct counting under kind k.
func (v Value) Key(k Kind) string {
	switch k {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindTemporal:
		return v.Time.UTC().Format(time.RFC3339Nano)
	default:
		return v.Raw
	}
}

// Column is a named, kind-tagged sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Unit   string
	Values []Value
}

// ColumnInfo describes a column without its values.
type ColumnInfo struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Table is the read interface the profiling engine consumes.
type Table interface {
	Columns() []ColumnInfo
	// Values returns the column's cells in row order. Callers must not modify the slice.
	Values(name string) ([]Value, error)
	Rows() int
}

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrRaggedColumns is returned when columns disagree on row count.
	ErrRaggedColumns = errors.New("columns have different row counts")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Dataset is an in-memory Table with fixed column kinds.
type Dataset struct {
	name  string
	cols  []Column
	index map[string]int
	rows  int
}

var _ Table = (*Dataset)(nil)

// New builds a Dataset from columns that all share the same row count.
func New(name string, cols ...Column) (*Dataset, error) {
	d := &Dataset{name: name, cols: make([]Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			d.rows = len(c.Values)
		} else if len(c.Values) != d.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, c.Name, len(c.Values), d.rows)
		}
		d.index[c.Name] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Name returns the dataset label, usually the source file name.
func (d *Dataset) Name() string { return d.name }

func (d *Dataset) Rows() int { return d.rows }

func (d *Dataset) Columns() []ColumnInfo {
	out := make([]ColumnInfo, len(d.cols))
	for i, c := range d.cols {
		out[i] = ColumnInfo{Name: c.Name, Kind: c.Kind, Unit: c.Unit}
	}
	return out
}

func (d *Dataset) Values(name string) ([]Value, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.cols[i].Values, nil
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.cols[i], true
}

// Has reports whether t has a column called name.
func Has(t Table, name string) bool {
	for _, c := range t.Columns() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Lookup returns the ColumnInfo for name.
func Lookup(t Table, name string) (ColumnInfo, bool) {
	for _, c := range t.Columns() {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}
