// Package report flattens the decoded cost and usage payloads into the fixed
// column tables consumed by the workbook and CSV writers.
package report

// Row is one flattened output record keyed by column name. Values are scalars:
// string, float64, int, bool, time.Time or nil.
type Row map[string]any

// Table is an assembled report with a fixed, ordered column schema. Column
// names and order are a compatibility contract with the spreadsheet consumers
// and must not change.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}
