package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"oscost/domain/report"
)

// WriteAllCSVs writes every report table into dir, one file per table.
func WriteAllCSVs(dir string, tables []report.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, t := range tables {
		if err := WriteTableCSV(filepath.Join(dir, FileName(t.Name)), t); err != nil {
			return err
		}
	}
	return nil
}

// FileName maps a sheet name to its CSV file name, e.g. "OS Costs Daily"
// becomes "os_costs_daily.csv".
func FileName(sheet string) string {
	return strings.ToLower(strings.ReplaceAll(sheet, " ", "_")) + ".csv"
}

// WriteTableCSV writes one table with its header row. Null cells become empty
// strings.
func WriteTableCSV(path string, t report.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[i] = formatValue(row[col])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", x)
	}
}
