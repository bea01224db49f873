package report

import "oscost/domain/costing"

// Auxiliary sheets the workbook always carries alongside the report tables.

// DataPeriod records the extraction window and the usage guidelines.
func DataPeriod(start, end string) Table {
	return Table{
		Name:    "Data_Period",
		Columns: []string{"Start Date", "End Date", "Guidelines"},
		Rows: []Row{
			{"Start Date": start, "End Date": end, "Guidelines": "Enter start and end dates from the same month."},
			{"Start Date": nil, "End Date": nil, "Guidelines": "To get data from multiple months, make copies of the file."},
			{"Start Date": nil, "End Date": nil, "Guidelines": "The date range should be no earlier than 4 months before the current month."},
		},
	}
}

// DefaultMasterSettings crosses the currency master list with the account
// settings. When the lookups failed the sheet falls back to the run currency
// and the amortized cost type.
func DefaultMasterSettings(currencies []costing.Currency, settings *costing.AccountSettings, fallbackCurrency string) Table {
	t := Table{
		Name:    "Default Master Settings",
		Columns: []string{"code", "name", "symbol", "description", "data.currency", "data.cost_type"},
	}

	currency := fallbackCurrency
	costType := "calculated_amortized_cost"
	if settings != nil {
		if settings.Currency != "" {
			currency = settings.Currency
		}
		if settings.CostType != "" {
			costType = settings.CostType
		}
	}

	for _, c := range currencies {
		t.Rows = append(t.Rows, Row{
			"code":           c.Code,
			"name":           c.Name,
			"symbol":         c.Symbol,
			"description":    c.Description,
			"data.currency":  currency,
			"data.cost_type": costType,
		})
	}
	if len(t.Rows) == 0 {
		t.Rows = append(t.Rows, Row{
			"code":           currency,
			"name":           nil,
			"symbol":         nil,
			"description":    nil,
			"data.currency":  currency,
			"data.cost_type": costType,
		})
	}
	return t
}

// OverheadCostTypes lists the distribution modes of the platform overhead.
func OverheadCostTypes() Table {
	return Table{
		Name:    "Project Overhead Cost Types",
		Columns: []string{"cost type", "description"},
		Rows: []Row{
			{"cost type": "distributed", "description": "Platform and worker unallocated costs distributed to projects"},
			{"cost type": "unallocated", "description": "Overhead kept on its own cost category"},
		},
	}
}

// GroupBys lists the grouping axes of the cost reports.
func GroupBys() Table {
	t := Table{
		Name:    "OpenShift Group Bys",
		Columns: []string{"Group By", "Group By Code"},
	}
	for _, dim := range Dimensions {
		t.Rows = append(t.Rows, Row{"Group By": dim.Label, "Group By Code": dim.Code})
	}
	return t
}

// TagKeys lists the tag keys known to the account. When the lookup failed the
// sheet keeps the configured tag key so the workbook filters still work.
func TagKeys(set *costing.TagKeySet, fallbackKey string) Table {
	t := Table{
		Name:    "OS Tag Keys",
		Columns: []string{"count", "key", "enabled", "Group By"},
	}
	if set != nil {
		for _, tag := range set.Tags {
			enabled := any(nil)
			if tag.Enabled != nil {
				enabled = *tag.Enabled
			}
			t.Rows = append(t.Rows, Row{"count": set.Count, "key": tag.Key, "enabled": enabled, "Group By": "tag"})
		}
	}
	if len(t.Rows) == 0 {
		t.Rows = append(t.Rows, Row{"count": 1, "key": fallbackKey, "enabled": true, "Group By": "tag"})
	}
	return t
}
