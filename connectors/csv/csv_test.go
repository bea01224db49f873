package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oscost/domain/report"
)

func TestFileName(t *testing.T) {
	if got := FileName("OS Costs Daily"); got != "os_costs_daily.csv" {
		t.Fatalf("FileName = %s", got)
	}
	if got := FileName("OS Cost Cluster Projects"); got != "os_cost_cluster_projects.csv" {
		t.Fatalf("FileName = %s", got)
	}
}

func TestWriteTableCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tbl := report.Table{
		Name:    "OS Cost Project Tags",
		Columns: []string{"code", "date", "project", "key", "values", "enabled", "Filter Month"},
		Rows: []report.Row{
			{
				"code":         "BRL",
				"date":         time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
				"project":      "billing",
				"key":          "produto",
				"values":       "loja",
				"enabled":      true,
				"Filter Month": "2026-07",
			},
			{
				"code":         "BRL",
				"date":         time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
				"project":      "empty-proj",
				"key":          nil,
				"values":       nil,
				"enabled":      nil,
				"Filter Month": "2026-07",
			},
		},
	}
	if err := WriteTableCSV(path, tbl); err != nil {
		t.Fatalf("WriteTableCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0][0] != "code" || records[0][6] != "Filter Month" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][1] != "2026-07-01" || records[1][5] != "true" {
		t.Fatalf("row = %v", records[1])
	}
	// Null cells serialize as empty strings.
	if records[2][3] != "" || records[2][4] != "" || records[2][5] != "" {
		t.Fatalf("null row = %v", records[2])
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue(12.5); got != "12.5" {
		t.Fatalf("float = %s", got)
	}
	if got := formatValue(0.0); got != "0" {
		t.Fatalf("zero = %s", got)
	}
	if got := formatValue(3); got != "3" {
		t.Fatalf("int = %s", got)
	}
	if got := formatValue(time.Time{}); got != "" {
		t.Fatalf("zero time = %s", got)
	}
}

func TestWriteAllCSVs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	tables := []report.Table{
		{Name: "OS Costs Daily", Columns: []string{"code"}},
		{Name: "OS Daily Usage", Columns: []string{"Group By"}},
	}
	if err := WriteAllCSVs(dir, tables); err != nil {
		t.Fatalf("WriteAllCSVs: %v", err)
	}
	for _, name := range []string{"os_costs_daily.csv", "os_daily_usage.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
