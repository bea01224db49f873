package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"oscost/domain/costing"
)

// Source is the slice of the API client the drill-down reports need. Failed
// drill-downs degrade to warnings; the report keeps the rows it has.
type Source interface {
	ClusterProjects(ctx context.Context, cluster, start, end, currency string) ([]costing.CostDay, error)
	ProjectTags(ctx context.Context, project, start, end string) ([]costing.TagRecord, error)
	Usage(ctx context.Context, usageCode, dimension, tagKey, start, end string) (*costing.UsageSet, error)
}

// CostsDaily combines the flattened rows of all four dimensions into the
// cost-by-day table. An empty collection still yields the full column header.
func CostsDaily(data *costing.CostData, currency string) Table {
	t := Table{Name: "OS Costs Daily", Columns: CostDailyColumns}
	for _, dim := range Dimensions {
		set := data.Sets[dim.Code]
		overhead := true
		if set.DistributedOverhead != nil {
			overhead = *set.DistributedOverhead
		}
		tagKey := ""
		if dim.Code == "tag" {
			tagKey = data.TagKey
		}
		for _, day := range set.Days {
			for _, entry := range day.Entries {
				for _, v := range entry.Values {
					var deltas *deltaOverride
					if dim.PassDeltas {
						deltas = &deltaOverride{value: v.DeltaValue, percent: v.DeltaPercent}
					}
					t.Rows = append(t.Rows, flattenCostValue(v, dim, overhead, entry.Name, day.Date, currency, tagKey, deltas))
				}
			}
		}
	}
	return t
}

// ClusterProjectColumns is the sheet order of the cluster/project report.
var ClusterProjectColumns = []string{
	"code", "Group By Code", "cluster", "date", "project", "value", "units", "Filter Month",
}

type clusterMonth struct {
	Cluster string
	Month   string
}

// ClusterProjects drills into every distinct (cluster, month) pair seen in the
// cluster dimension and flattens the per-project daily cost totals.
func ClusterProjects(ctx context.Context, src Source, data *costing.CostData, start, end, currency string) Table {
	t := Table{Name: "OS Cost Cluster Projects", Columns: ClusterProjectColumns}

	var pairs []clusterMonth
	for _, day := range data.Sets["cluster"].Days {
		month := monthOf(day.Date)
		for _, entry := range day.Entries {
			if entry.Name == "" {
				continue
			}
			pairs = append(pairs, clusterMonth{Cluster: entry.Name, Month: month})
		}
	}
	pairs = lo.Uniq(pairs)

	for _, pair := range pairs {
		days, err := src.ClusterProjects(ctx, pair.Cluster, start, end, currency)
		if err != nil {
			slog.Warn("phase.cluster_projects.fetch.error", "cluster", pair.Cluster, "error", err)
			continue
		}
		for _, day := range days {
			for _, entry := range day.Entries {
				if entry.Name == "" {
					continue
				}
				for _, v := range entry.Values {
					t.Rows = append(t.Rows, Row{
						"code":          currency,
						"Group By Code": "cluster",
						"cluster":       pair.Cluster,
						"date":          parseDay(day.Date),
						"project":       entry.Name,
						"value":         orZero(v.Cost.Total.Value),
						"units":         currency,
						"Filter Month":  monthOf(day.Date),
					})
				}
			}
		}
	}
	return t
}

// ProjectTagColumns is the sheet order of the project/tag report.
var ProjectTagColumns = []string{
	"code", "date", "project", "key", "values", "enabled", "Filter Month",
}

type projectMonth struct {
	Project string
	Month   time.Time
}

// ProjectTags emits one row per (project, tag key, tag value). A project
// without tags still gets one marker row with key, values and enabled all
// null; a key without values keeps the key and nulls the value. enabled
// propagates as null when the API omits it.
func ProjectTags(ctx context.Context, src Source, data *costing.CostData, start, end, currency string) Table {
	t := Table{Name: "OS Cost Project Tags", Columns: ProjectTagColumns}

	var pairs []projectMonth
	for _, day := range data.Sets["project"].Days {
		month := monthStart(day.Date)
		for _, entry := range day.Entries {
			if entry.Name == "" {
				continue
			}
			pairs = append(pairs, projectMonth{Project: entry.Name, Month: month})
		}
	}
	pairs = lo.Uniq(pairs)

	for _, pair := range pairs {
		tags, err := src.ProjectTags(ctx, pair.Project, start, end)
		if err != nil {
			slog.Warn("phase.project_tags.fetch.error", "project", pair.Project, "error", err)
			continue
		}

		base := Row{
			"code":         currency,
			"date":         pair.Month,
			"project":      pair.Project,
			"Filter Month": pair.Month.Format("2006-01"),
		}
		if len(tags) == 0 {
			r := cloneRow(base)
			r["key"], r["values"], r["enabled"] = nil, nil, nil
			t.Rows = append(t.Rows, r)
			continue
		}
		for _, tag := range tags {
			enabled := any(nil)
			if tag.Enabled != nil {
				enabled = *tag.Enabled
			}
			if len(tag.Values) == 0 {
				r := cloneRow(base)
				r["key"], r["values"], r["enabled"] = tag.Key, nil, enabled
				t.Rows = append(t.Rows, r)
				continue
			}
			for _, val := range tag.Values {
				r := cloneRow(base)
				r["key"], r["values"], r["enabled"] = tag.Key, val, enabled
				t.Rows = append(t.Rows, r)
			}
		}
	}
	return t
}

func cloneRow(r Row) Row {
	out := make(Row, len(r)+3)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// UsageColumns is the sheet order of the daily usage report.
var UsageColumns = []string{
	"Group By",
	"Group By Code",
	"Usage Code",
	"Usage Name",
	"Key",
	"meta.count",
	"meta.currency",
	"date",
	"Name",
	"values.usage.value",
	"values.usage.units",
	"values.request.value",
	"values.request.units",
	"values.request.unused",
	"values.request.unused_percent",
	"values.limit.value",
	"values.limit.units",
	"values.capacity.value",
	"values.capacity.units",
	"values.capacity.unused",
	"values.capacity.unused_percent",
	"values.capacity.count",
	"values.capacity.count_units",
}

var usageNames = map[string]string{
	"compute": "CPU",
	"memory":  "Memory",
	"volumes": "Volume Claims",
}

// DailyUsage crosses every usage code with every dimension (the tag dimension
// with every discovered tag key) and flattens the usage, request, limit and
// capacity quantities. Absent usage sub-fields stay null; the zero coalescing
// of the cost report does not apply here.
func DailyUsage(ctx context.Context, src Source, usageCodes, tagKeys []string, start, end, currency string) Table {
	t := Table{Name: "OS Daily Usage", Columns: UsageColumns}
	for _, code := range usageCodes {
		name := usageNames[code]
		if name == "" {
			name = code
		}
		for _, dim := range Dimensions {
			if dim.Code == "tag" {
				for _, key := range tagKeys {
					appendUsageRows(ctx, &t, src, code, name, dim, key, start, end, currency)
				}
				continue
			}
			appendUsageRows(ctx, &t, src, code, name, dim, "", start, end, currency)
		}
	}
	return t
}

func appendUsageRows(ctx context.Context, t *Table, src Source, code, name string, dim Dimension, tagKey, start, end, currency string) {
	set, err := src.Usage(ctx, code, dim.Code, tagKey, start, end)
	if err != nil {
		slog.Warn("phase.usage.fetch.error", "usage", code, "dimension", dim.Code, "key", tagKey, "error", err)
		return
	}

	metaCount := any(nil)
	if set.Count != nil {
		metaCount = *set.Count
	}
	metaCurrency := set.Currency
	if metaCurrency == "" {
		metaCurrency = currency
	}
	key := any(nil)
	if dim.Code == "tag" {
		key = tagKey
	}

	for _, day := range set.Days {
		for _, entry := range day.Entries {
			for _, v := range entry.Values {
				row := Row{
					"Group By":      dim.Label,
					"Group By Code": dim.Code,
					"Usage Code":    code,
					"Usage Name":    name,
					"Key":           key,
					"meta.count":    metaCount,
					"meta.currency": metaCurrency,
					"date":          parseDay(day.Date),
					"Name":          entry.Name,
				}
				putQuantity(row, "values.usage", v.Usage, false, false)
				putQuantity(row, "values.request", v.Request, true, false)
				putQuantity(row, "values.limit", v.Limit, false, false)
				putQuantity(row, "values.capacity", v.Capacity, true, true)
				t.Rows = append(t.Rows, row)
			}
		}
	}
}

func putQuantity(row Row, prefix string, q *costing.UsageQuantity, withUnused, withCount bool) {
	var value, units, unused, unusedPct, count, countUnits any
	if q != nil {
		value = floatOrNil(q.Value)
		units = strOrNil(q.Units)
		unused = floatOrNil(q.Unused)
		unusedPct = floatOrNil(q.UnusedPercent)
		count = floatOrNil(q.Count)
		countUnits = strOrNil(q.CountUnits)
	}
	row[prefix+".value"] = value
	row[prefix+".units"] = units
	if withUnused {
		row[prefix+".unused"] = unused
		row[prefix+".unused_percent"] = unusedPct
	}
	if withCount {
		row[prefix+".count"] = count
		row[prefix+".count_units"] = countUnits
	}
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func strOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
