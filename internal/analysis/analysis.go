// Package analysis sequences the temporal filter and the column profilers
// into a single Report.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
	"github.com/KaramelBytes/dataquality-cli/internal/profile"
	"github.com/KaramelBytes/dataquality-cli/internal/temporal"
)

// Config controls one profiling run.
type Config struct {
	// DateColumn enables the trailing-window filter when set.
	DateColumn string `yaml:"date_column"`
	// MaxCategories caps the entries per categorical page.
	MaxCategories int `yaml:"max_categories" validate:"gt=0"`
	// WindowYears is the width of the trailing window.
	WindowYears int `yaml:"window_years" validate:"gt=0"`
	// HistogramBins sets numeric histogram bins; 0 picks Sturges' rule.
	HistogramBins int `yaml:"histogram_bins" validate:"gte=0"`
}

// DefaultConfig returns reasonable defaults for a profiling run.
func DefaultConfig() Config {
	return Config{
		MaxCategories: profile.DefaultMaxCategories,
		WindowYears:   temporal.DefaultYears,
	}
}

// Report is the immutable result of one profiling run.
type Report struct {
	RunID         string                              `json:"run_id" yaml:"run_id"`
	Name          string                              `json:"name,omitempty" yaml:"name,omitempty"`
	GeneratedAt   time.Time                           `json:"generated_at" yaml:"generated_at"`
	Rows          int                                 `json:"rows" yaml:"rows"`
	Columns       []dataset.ColumnInfo                `json:"columns" yaml:"columns"`
	Nulls         map[string]int                      `json:"nulls" yaml:"nulls"`
	Distinct      map[string]int                      `json:"distinct" yaml:"distinct"`
	Numeric       map[string]profile.ColumnStatistics `json:"numeric" yaml:"numeric"`
	Categories    map[string][]profile.CategoryCount  `json:"categories" yaml:"categories"`
	Pages         map[string][]profile.CategoryPage   `json:"pages" yaml:"pages"`
	MaxCategories int                                 `json:"max_categories" yaml:"max_categories"`
	Temporal      *TemporalSummary                    `json:"temporal,omitempty" yaml:"temporal,omitempty"`
	Warnings      []string                            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TemporalSummary records what the trailing-window filter did.
type TemporalSummary struct {
	Column   string          `json:"column" yaml:"column"`
	Input    int             `json:"input_rows" yaml:"input_rows"`
	Unparsed int             `json:"unparsed_rows" yaml:"unparsed_rows"`
	Retained int             `json:"retained_rows" yaml:"retained_rows"`
	Window   temporal.Window `json:"window" yaml:"window"`
}

// NumericColumns returns the names of numeric columns in table order.
func (r *Report) NumericColumns() []string { return r.columnsOf(dataset.KindNumeric) }

// CategoricalColumns returns the names of categorical columns in table order.
func (r *Report) CategoricalColumns() []string { return r.columnsOf(dataset.KindCategorical) }

func (r *Report) columnsOf(k dataset.Kind) []string {
	var out []string
	for _, c := range r.Columns {
		if c.Kind == k {
			out = append(out, c.Name)
		}
	}
	return out
}

// Profiler runs the pipeline. The zero value is not usable; call New.
type Profiler struct {
	log      logrus.FieldLogger
	validate *validator.Validate
}

// New returns a Profiler that traces its stages to log. A nil log is silent.
func New(log logrus.FieldLogger) *Profiler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Profiler{log: log, validate: v}
}

var silent = New(nil)

// Run profiles t with a silent Profiler.
func Run(t dataset.Table, cfg Config) (*Report, error) {
	return silent.Run(t, cfg)
}

// Run validates cfg against t, applies the trailing-window filter when a date
// column is configured, then profiles and paginates the resulting table.
// Configuration problems are returned before any statistics are computed.
func (p *Profiler) Run(t dataset.Table, cfg Config) (*Report, error) {
	if err := p.check(t, cfg); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := p.log.WithField("run_id", runID)
	rep := &Report{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		MaxCategories: cfg.MaxCategories,
	}
	if n, ok := t.(interface{ Name() string }); ok {
		rep.Name = n.Name()
	}

	if cfg.DateColumn != "" {
		res, err := temporal.FilterYears(t, cfg.DateColumn, cfg.WindowYears)
		if err != nil {
			return nil, fmt.Errorf("filter by %q: %w", cfg.DateColumn, err)
		}
		t = res.Data
		rep.Temporal = &TemporalSummary{
			Column:   res.Column,
			Input:    res.Input,
			Unparsed: res.Unparsed,
			Retained: res.Retained(),
			Window:   res.Window,
		}
		if res.Unparsed > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("dropped %d/%d rows with unparseable dates in %q", res.Unparsed, res.Input, res.Column))
		}
		if !res.Window.Valid {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("no parseable dates in %q; the filtered dataset is empty", res.Column))
		}
		log.WithFields(logrus.Fields{
			"column":   res.Column,
			"input":    res.Input,
			"retained": res.Retained(),
			"unparsed": res.Unparsed,
		}).Debug("temporal filter applied")
	}

	rep.Rows = t.Rows()
	rep.Columns = t.Columns()

	prof, err := profile.Columns(t, profile.Options{HistogramBins: cfg.HistogramBins})
	if err != nil {
		return nil, err
	}
	rep.Nulls, rep.Distinct, rep.Numeric = prof.Nulls, prof.Distinct, prof.Numeric
	log.WithField("numeric", len(rep.Numeric)).Debug("columns profiled")

	if rep.Categories, err = profile.ValueCounts(t); err != nil {
		return nil, err
	}
	rep.Pages = make(map[string][]profile.CategoryPage, len(rep.Categories))
	names := make([]string, 0, len(rep.Categories))
	for name := range rep.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pages, err := profile.Paginate(rep.Categories[name], cfg.MaxCategories)
		if err != nil {
			return nil, err
		}
		rep.Pages[name] = pages
		log.WithFields(logrus.Fields{"column": name, "distinct": len(rep.Categories[name]), "pages": len(pages)}).Debug("categories paginated")
	}
	return rep, nil
}

func (p *Profiler) check(t dataset.Table, cfg Config) error {
	if err := p.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: fe.Field(), Reason: fmt.Sprintf("must be %s %s, got %v", opName(fe.Tag()), fe.Param(), fe.Value()), Err: err}
		}
		return &ConfigError{Reason: err.Error(), Err: err}
	}
	if cfg.DateColumn != "" && !dataset.Has(t, cfg.DateColumn) {
		var names []string
		for _, c := range t.Columns() {
			names = append(names, c.Name)
		}
		return &ConfigError{
			Field:  "date_column",
			Reason: fmt.Sprintf("column %q not found (available: %s)", cfg.DateColumn, strings.Join(names, ", ")),
			Err:    dataset.ErrColumnNotFound,
		}
	}
	return nil
}

func opName(tag string) string {
	switch tag {
	case "gt":
		return ">"
	case "gte":
		return ">="
	}
	return tag
}
