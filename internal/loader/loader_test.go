package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

var csvRows = []string{
	"Group;Concentration (g/L);Score;LocaleNumber;Category;Sampled",
	"A;0,5;10,0;1.000,0;alpha;01/03/2021",
	"A;0,6;11,0;1.100,0;alpha;02/03/2021",
	"A;0,55;NA;0.900,0;beta;03/03/2021",
	"B;0,7;10,5;1.050,0;alpha;04/03/2021",
	"B;;9,8;0.980,0;beta;bad",
}

func kinds(d *dataset.Dataset) map[string]dataset.Kind {
	out := map[string]dataset.Kind{}
	for _, c := range d.Columns() {
		out[c.Name] = c.Kind
	}
	return out
}

func TestLoadCSVWithLocaleAndUnits(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "metrics.csv")
	if err := os.WriteFile(path, []byte(strings.Join(csvRows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	d, err := Load(path, Options{
		Delimiter: ';',
		Parse:     dataset.ParseOptions{DecimalSeparator: ',', ThousandsSeparator: '.', SplitUnits: true},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Name() != "metrics.csv" || d.Rows() != 5 {
		t.Fatalf("unexpected dataset %s with %d rows", d.Name(), d.Rows())
	}
	k := kinds(d)
	if k["Group"] != dataset.KindCategorical || k["Concentration"] != dataset.KindNumeric ||
		k["Score"] != dataset.KindNumeric || k["LocaleNumber"] != dataset.KindNumeric ||
		k["Sampled"] != dataset.KindCategorical {
		t.Fatalf("unexpected kinds: %v", k)
	}
	conc, _ := d.Column("Concentration")
	if conc.Unit != "g/L" {
		t.Fatalf("unit = %q, want g/L", conc.Unit)
	}
	if !conc.Values[4].Null {
		t.Fatalf("empty cell should be null")
	}
	loc, _ := d.Column("LocaleNumber")
	if loc.Values[1].Num != 1100 {
		t.Fatalf("locale number = %v, want 1100", loc.Values[1].Num)
	}
	score, _ := d.Column("Score")
	if !score.Values[2].Null {
		t.Fatalf("NA should be null")
	}
}

func TestLoadTSVAndBOM(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "hops.tsv")
	content := "\uFEFFdate\tplot\n10/08/2024\tA1\n12/08/2024\tB3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	k := kinds(d)
	if k["date"] != dataset.KindTemporal || k["plot"] != dataset.KindCategorical {
		t.Fatalf("unexpected kinds: %v", k)
	}
}

func TestLoadEmptyCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Rows() != 0 || len(d.Columns()) != 0 {
		t.Fatalf("expected empty dataset")
	}
}

func TestLoadUnsupported(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, Options{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Load(filepath.Join(tmp, "missing.csv"), Options{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]any{
		{"Group", "Score", "Sampled"},
		{"A", 10.5, "01/01/2020"},
		{"B", 9.8, "01/01/2021"},
		{"A", 11, "01/01/2022"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Data", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SetCellValue("Sheet1", "A1", "placeholder"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	path := writeXLSXFixture(t)

	byName, err := Load(path, Options{SheetName: "data"})
	if err != nil {
		t.Fatalf("Load by name: %v", err)
	}
	if byName.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", byName.Rows())
	}
	if !strings.Contains(byName.Name(), "sheet: Data") {
		t.Fatalf("name = %q", byName.Name())
	}
	k := kinds(byName)
	if k["Score"] != dataset.KindNumeric || k["Sampled"] != dataset.KindTemporal || k["Group"] != dataset.KindCategorical {
		t.Fatalf("unexpected kinds: %v", k)
	}

	byIndex, err := Load(path, Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("Load by index: %v", err)
	}
	if byIndex.Rows() != 3 {
		t.Fatalf("rows by index = %d, want 3", byIndex.Rows())
	}

	if _, err := Load(path, Options{SheetName: "Nope"}); err == nil || !strings.Contains(err.Error(), "Available sheets: Sheet1, Data") {
		t.Fatalf("expected sheet listing error, got %v", err)
	}
	if _, err := Load(path, Options{SheetIndex: 9}); err == nil {
		t.Fatalf("expected out of range error")
	}
}
