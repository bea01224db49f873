// Package xlsx serializes assembled report tables into one spreadsheet
// workbook. All sheets are built in memory and the file is only written once
// every table is in place, so a failed run never leaves a partial workbook.
package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"oscost/domain/report"
)

// WriteWorkbook writes one sheet per table, header row first, in table order.
func WriteWorkbook(path string, tables []report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(t.Name); err != nil {
				return err
			}
		}

		header := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			header[j] = col
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return err
		}

		for r, row := range t.Rows {
			cells := make([]any, len(t.Columns))
			for j, col := range t.Columns {
				cells[j] = cellValue(row[col])
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.Name, addr, &cells); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// cellValue normalizes row values for excelize: nil and zero times become
// empty cells, everything else passes through.
func cellValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	default:
		return v
	}
}
