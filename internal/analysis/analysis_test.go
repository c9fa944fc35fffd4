package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// countingTable records whether any column values were read.
type countingTable struct {
	dataset.Table
	reads int
}

func (c *countingTable) Values(name string) ([]dataset.Value, error) {
	c.reads++
	return c.Table.Values(name)
}

func sales(t *testing.T) *dataset.Dataset {
	t.Helper()
	var dates, regions, amounts, notes []dataset.Value
	for y := 2010; y <= 2023; y++ {
		dates = append(dates, dataset.Text(fmt.Sprintf("01/01/%d", y)))
		regions = append(regions, dataset.Text(fmt.Sprintf("r%02d", y%4)))
		amounts = append(amounts, dataset.Number(float64(y-2000)))
		notes = append(notes, dataset.Text(fmt.Sprintf("note-%d", y)))
	}
	dates = append(dates, dataset.Text("not a date"))
	regions = append(regions, dataset.Null())
	amounts = append(amounts, dataset.Null())
	notes = append(notes, dataset.Text("orphan"))

	d, err := dataset.New("sales.csv",
		dataset.Column{Name: "date", Kind: dataset.KindCategorical, Values: dates},
		dataset.Column{Name: "region", Kind: dataset.KindCategorical, Values: regions},
		dataset.Column{Name: "amount", Kind: dataset.KindNumeric, Values: amounts},
		dataset.Column{Name: "note", Kind: dataset.KindCategorical, Values: notes},
	)
	require.NoError(t, err)
	return d
}

func TestRunWithoutDateColumn(t *testing.T) {
	rep, err := Run(sales(t), DefaultConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "sales.csv", rep.Name)
	assert.Equal(t, 15, rep.Rows)
	assert.Nil(t, rep.Temporal)
	assert.Equal(t, 1, rep.Nulls["region"])
	assert.Equal(t, 4, rep.Distinct["region"])
	assert.Equal(t, 14, rep.Numeric["amount"].Count)
	assert.Equal(t, []string{"amount"}, rep.NumericColumns())
	assert.Equal(t, []string{"date", "region", "note"}, rep.CategoricalColumns())

	// 15 distinct notes with pages of 10
	require.Len(t, rep.Pages["note"], 2)
	assert.Len(t, rep.Pages["note"][0].Entries, 10)
	assert.Len(t, rep.Pages["note"][1].Entries, 5)
}

func TestRunAppliesTrailingWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DateColumn = "date"
	rep, err := Run(sales(t), cfg)
	require.NoError(t, err)

	require.NotNil(t, rep.Temporal)
	assert.Equal(t, 15, rep.Temporal.Input)
	assert.Equal(t, 1, rep.Temporal.Unparsed)
	assert.Equal(t, 11, rep.Temporal.Retained)
	assert.Equal(t, 2013, rep.Temporal.Window.Cutoff.Year())
	assert.Equal(t, 11, rep.Rows)
	assert.Equal(t, 0, rep.Nulls["date"])
	assert.Equal(t, 11, rep.Numeric["amount"].Count)
	assert.Equal(t, 13.0, rep.Numeric["amount"].Min)
	assert.Equal(t, 23.0, rep.Numeric["amount"].Max)
	assert.NotContains(t, rep.Categories, "date", "the date column is temporal after filtering")
	assert.Len(t, rep.Warnings, 1)
}

func TestRunMissingDateColumnFailsBeforeReading(t *testing.T) {
	tbl := &countingTable{Table: sales(t)}
	cfg := DefaultConfig()
	cfg.DateColumn = "missing_col"

	rep, err := Run(tbl, cfg)
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "date_column", cerr.Field)
	assert.Zero(t, tbl.reads)
}

func TestRunRejectsNonPositiveMaxCategories(t *testing.T) {
	for _, k := range []int{0, -1} {
		cfg := DefaultConfig()
		cfg.MaxCategories = k
		_, err := Run(sales(t), cfg)
		require.ErrorIs(t, err, ErrConfiguration)

		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "max_categories", cerr.Field)
	}
}

func TestRunNoParseableDatesYieldsEmptyReport(t *testing.T) {
	d, err := dataset.New("e",
		dataset.Column{Name: "d", Kind: dataset.KindCategorical, Values: []dataset.Value{dataset.Text("x"), dataset.Text("y")}},
		dataset.Column{Name: "n", Kind: dataset.KindNumeric, Values: []dataset.Value{dataset.Number(1), dataset.Number(2)}},
	)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.DateColumn = "d"

	rep, err := Run(d, cfg)
	require.NoError(t, err)
	assert.Zero(t, rep.Rows)
	assert.Equal(t, 2, rep.Temporal.Unparsed)
	assert.False(t, rep.Temporal.Window.Valid)
	assert.Zero(t, rep.Numeric["n"].Count)
	assert.True(t, math.IsNaN(rep.Numeric["n"].Mean))
	assert.Len(t, rep.Warnings, 2)
}

func TestProfilerLogsStages(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.DateColumn = "date"
	_, err := New(log).Run(sales(t), cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "temporal filter applied")
	assert.Contains(t, buf.String(), "categories paginated")
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "max_categories", Reason: "must be > 0"}
	assert.Equal(t, "configuration error: max_categories: must be > 0", err.Error())
}
