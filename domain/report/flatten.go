package report

import (
	"strings"
	"time"

	"oscost/domain/costing"
)

// Dimension describes one grouping axis of the cost and usage reports.
type Dimension struct {
	Label string
	Code  string
	// PassDeltas mirrors the upstream report definitions: the project and
	// tag queries surface delta data, cluster and node do not.
	PassDeltas bool
}

var (
	DimProject = Dimension{Label: "Project", Code: "project", PassDeltas: true}
	DimCluster = Dimension{Label: "Cluster", Code: "cluster"}
	DimNode    = Dimension{Label: "Node", Code: "node"}
	DimTag     = Dimension{Label: "Tag", Code: "tag", PassDeltas: true}
)

// Dimensions in report order.
var Dimensions = []Dimension{DimProject, DimCluster, DimNode, DimTag}

// CostDailyColumns is the exact sheet order of the cost-by-day report.
var CostDailyColumns = []string{
	"code",
	"Group By Code",
	"meta.distributed_overhead",
	"date",
	"Name",
	"values.date",
	"values.classification",
	"values.source_uuid",
	"values.clusters",
	"values.infrastructure.raw.value",
	"values.infrastructure.raw.units",
	"values.infrastructure.markup.value",
	"values.infrastructure.markup.units",
	"values.infrastructure.usage.value",
	"values.infrastructure.usage.units",
	"values.infrastructure.total.value",
	"values.infrastructure.total.units",
	"values.supplementary.raw.value",
	"values.supplementary.raw.units",
	"values.supplementary.markup.value",
	"values.supplementary.markup.units",
	"values.supplementary.usage.value",
	"values.supplementary.usage.units",
	"values.supplementary.total.value",
	"values.supplementary.total.units",
	"values.cost.raw.value",
	"values.cost.raw.units",
	"values.cost.markup.value",
	"values.cost.markup.units",
	"values.cost.usage.value",
	"values.cost.usage.units",
	"values.cost.platform_distributed.value",
	"values.cost.platform_distributed.units",
	"values.cost.worker_unallocated_distributed.value",
	"values.cost.worker_unallocated_distributed.units",
	"values.cost.distributed.value",
	"values.cost.distributed.units",
	"values.cost.total.value",
	"values.cost.total.units",
	"values.delta_percent",
	"key",
	"values.delta_value",
}

// deltaOverride carries the snapshot deltas when a dimension passes them
// through explicitly.
type deltaOverride struct {
	value   *float64
	percent *float64
}

// flattenCostValue turns one metric snapshot into a cost-by-day row. A missing
// monetary value coalesces to 0 and missing units to the run currency; a real
// zero passes through untouched.
func flattenCostValue(v costing.CostValue, dim Dimension, distributedOverhead bool, name, date, currency, tagKey string, deltas *deltaOverride) Row {
	row := Row{
		"code":                      currency,
		"Group By Code":             dim.Code,
		"meta.distributed_overhead": distributedOverhead,
		"date":                      parseDay(date),
		"Name":                      name,
		"values.classification":     v.Classification,
		"values.source_uuid":        strings.Join(v.SourceUUID, ","),
		"values.clusters":           strings.Join(v.Clusters, ","),
	}

	snapshotDate := v.Date
	if snapshotDate == "" {
		snapshotDate = date
	}
	row["values.date"] = parseDay(snapshotDate)

	putBuckets(row, "values.infrastructure", v.Infrastructure, currency, false)
	putBuckets(row, "values.supplementary", v.Supplementary, currency, false)
	putBuckets(row, "values.cost", v.Cost, currency, true)

	if deltas != nil {
		row["values.delta_percent"] = orZero(deltas.percent)
		row["values.delta_value"] = orZero(deltas.value)
	} else {
		row["values.delta_percent"] = orZero(v.DeltaPercent)
		row["values.delta_value"] = orZero(v.DeltaValue)
	}

	if dim.Code == "tag" && tagKey != "" {
		row["key"] = tagKey
	} else {
		row["key"] = nil
	}
	return row
}

func putBuckets(row Row, prefix string, b costing.CostBuckets, currency string, withDistributed bool) {
	putMoney(row, prefix+".raw", b.Raw, currency)
	putMoney(row, prefix+".markup", b.Markup, currency)
	putMoney(row, prefix+".usage", b.Usage, currency)
	if withDistributed {
		putMoney(row, prefix+".platform_distributed", b.PlatformDistributed, currency)
		putMoney(row, prefix+".worker_unallocated_distributed", b.WorkerUnallocatedDistributed, currency)
		putMoney(row, prefix+".distributed", b.Distributed, currency)
	}
	putMoney(row, prefix+".total", b.Total, currency)
}

func putMoney(row Row, prefix string, m costing.Money, currency string) {
	row[prefix+".value"] = orZero(m.Value)
	units := m.Units
	if units == "" {
		units = currency
	}
	row[prefix+".units"] = units
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// parseDay parses a YYYY-MM-DD date. An unparseable value yields a zero time,
// matching the lenient date handling of the upstream feed.
func parseDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func monthOf(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

func monthStart(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
