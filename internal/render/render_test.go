package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataquality-cli/internal/analysis"
	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
	"github.com/KaramelBytes/dataquality-cli/internal/profile"
)

func fixtureReport(t *testing.T) *analysis.Report {
	t.Helper()
	var dates, cities, temps []dataset.Value
	for i := 0; i < 23; i++ {
		dates = append(dates, dataset.Text(fmt.Sprintf("01/01/%d", 2000+i)))
		cities = append(cities, dataset.Text(fmt.Sprintf("city-%02d", i)))
		temps = append(temps, dataset.Number(float64(i%7)))
	}
	temps[3] = dataset.Null()
	d, err := dataset.New("weather.csv",
		dataset.Column{Name: "date", Kind: dataset.KindCategorical, Values: dates},
		dataset.Column{Name: "city", Kind: dataset.KindCategorical, Values: cities},
		dataset.Column{Name: "temp", Kind: dataset.KindNumeric, Unit: "°C", Values: temps},
	)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	cfg := analysis.DefaultConfig()
	cfg.DateColumn = "date"
	rep, err := analysis.Run(d, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return rep
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(fixtureReport(t))
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: weather.csv",
		"Rows: 11\n",
		"[TEMPORAL WINDOW]",
		"Window: 01/01/2012 .. 01/01/2022 (last 10 years)",
		"Rows: 23 in, 0 unparseable, 11 retained",
		"- temp [°C]: numeric (missing 0, 0.0%; distinct 7)",
		"- city: categorical (missing 0, 0.0%; distinct 11) — 2 pages of up to 10",
		"- date: temporal",
		"### city (part 1/2)",
		"### city (part 2/2)",
		"[NUMERIC DISTRIBUTIONS]",
		"### temp",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("unexpected notes section:\n%s", md)
	}
}

type recorder struct {
	pages []string
	dists []string
}

func (r *recorder) RenderPage(column string, p profile.CategoryPage) error {
	r.pages = append(r.pages, fmt.Sprintf("%s#%d/%d:%d", column, p.Index, p.Total, len(p.Entries)))
	return nil
}

func (r *recorder) RenderDistribution(column string, s profile.ColumnStatistics) error {
	r.dists = append(r.dists, fmt.Sprintf("%s:%d", column, s.Count))
	return nil
}

func TestWalkVisitsEveryPage(t *testing.T) {
	var rec recorder
	if err := Walk(fixtureReport(t), &rec); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if got, want := strings.Join(rec.pages, ","), "city#1/2:10,city#2/2:1"; got != want {
		t.Fatalf("pages = %s, want %s", got, want)
	}
	if got, want := strings.Join(rec.dists, ","), "temp:11"; got != want {
		t.Fatalf("distributions = %s, want %s", got, want)
	}
}

func TestTextPageBarsAreBounded(t *testing.T) {
	var buf bytes.Buffer
	page := profile.CategoryPage{Index: 1, Total: 1, Entries: []profile.CategoryCount{{Value: "a", Count: 50}, {Value: "b", Count: 1}}}
	if err := NewText(&buf, 10).RenderPage("col", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", buf.String())
	}
	if n := strings.Count(lines[1], "█"); n != 10 {
		t.Fatalf("top bar width = %d, want 10", n)
	}
	if n := strings.Count(lines[2], "█"); n != 1 {
		t.Fatalf("small bar width = %d, want 1", n)
	}
}

func TestWriteJSONAndYAML(t *testing.T) {
	rep := fixtureReport(t)

	var jb bytes.Buffer
	if err := Write(&jb, rep, FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jb.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v\n%s", err, jb.String())
	}
	if decoded["rows"].(float64) != 11 {
		t.Fatalf("rows = %v", decoded["rows"])
	}
	if !strings.Contains(jb.String(), `"kind": "temporal"`) {
		t.Fatalf("json missing kind names:\n%s", jb.String())
	}

	var yb bytes.Buffer
	if err := Write(&yb, rep, "yaml"); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(yb.Bytes(), &back); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if back["max_categories"] != 10 {
		t.Fatalf("max_categories = %v", back["max_categories"])
	}

	if err := Write(&yb, rep, "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
