package report

import (
	"context"
	"testing"

	"oscost/domain/costing"
)

type fakeSource struct {
	clusterProjects func(cluster string) ([]costing.CostDay, error)
	projectTags     func(project string) ([]costing.TagRecord, error)
	usage           func(usageCode, dimension, tagKey string) (*costing.UsageSet, error)

	clusterCalls []string
	tagCalls     []string
	usageCalls   []string
}

func (s *fakeSource) ClusterProjects(_ context.Context, cluster, _, _, _ string) ([]costing.CostDay, error) {
	s.clusterCalls = append(s.clusterCalls, cluster)
	return s.clusterProjects(cluster)
}

func (s *fakeSource) ProjectTags(_ context.Context, project, _, _ string) ([]costing.TagRecord, error) {
	s.tagCalls = append(s.tagCalls, project)
	return s.projectTags(project)
}

func (s *fakeSource) Usage(_ context.Context, usageCode, dimension, tagKey, _, _ string) (*costing.UsageSet, error) {
	s.usageCalls = append(s.usageCalls, usageCode+"/"+dimension+"/"+tagKey)
	return s.usage(usageCode, dimension, tagKey)
}

func costDataWithCluster(cluster string, dates ...string) *costing.CostData {
	var days []costing.CostDay
	for _, d := range dates {
		days = append(days, costing.CostDay{
			Date:    d,
			Entries: []costing.CostEntry{{Name: cluster, Values: []costing.CostValue{{Date: d}}}},
		})
	}
	return &costing.CostData{
		Sets:   map[string]costing.CostSet{"cluster": {Days: days}},
		TagKey: "produto",
	}
}

func TestCostsDailyEmptyStillCarriesColumns(t *testing.T) {
	data := &costing.CostData{Sets: map[string]costing.CostSet{}, TagKey: "produto"}
	tbl := CostsDaily(data, "BRL")
	if len(tbl.Rows) != 0 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	if len(tbl.Columns) != len(CostDailyColumns) {
		t.Fatalf("columns = %d", len(tbl.Columns))
	}
}

func TestCostsDailyCombinesDimensions(t *testing.T) {
	data := &costing.CostData{
		Sets: map[string]costing.CostSet{
			"cluster": {Days: []costing.CostDay{{
				Date:    "2026-07-01",
				Entries: []costing.CostEntry{{Name: "prod-east", Values: []costing.CostValue{{}}}},
			}}},
			"tag": {Days: []costing.CostDay{{
				Date:    "2026-07-01",
				Entries: []costing.CostEntry{{Name: "loja", Values: []costing.CostValue{{DeltaValue: f(2)}}}},
			}}},
		},
		TagKey: "produto",
	}
	tbl := CostsDaily(data, "BRL")
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	byCode := map[string]Row{}
	for _, r := range tbl.Rows {
		byCode[r["Group By Code"].(string)] = r
	}
	if byCode["cluster"]["Name"] != "prod-east" || byCode["cluster"]["key"] != nil {
		t.Fatalf("cluster row = %v", byCode["cluster"])
	}
	if byCode["tag"]["key"] != "produto" || byCode["tag"]["values.delta_value"] != 2.0 {
		t.Fatalf("tag row = %v", byCode["tag"])
	}
}

func TestClusterProjectsDrillDown(t *testing.T) {
	data := costDataWithCluster("prod-east", "2026-07-01", "2026-07-02")
	src := &fakeSource{
		clusterProjects: func(cluster string) ([]costing.CostDay, error) {
			return []costing.CostDay{
				{Date: "2026-07-01", Entries: []costing.CostEntry{{Name: "billing", Values: []costing.CostValue{
					{Cost: costing.CostBuckets{Total: costing.Money{Value: f(12.5), Units: "BRL"}}},
				}}}},
				{Date: "2026-07-02", Entries: []costing.CostEntry{{Name: "billing", Values: []costing.CostValue{
					{Cost: costing.CostBuckets{Total: costing.Money{Value: f(7.25), Units: "BRL"}}},
				}}}},
			}, nil
		},
	}

	tbl := ClusterProjects(context.Background(), src, data, "2026-07-01", "2026-07-31", "BRL")

	// Both days fall in the same month: one distinct pair, one drill-down call.
	if len(src.clusterCalls) != 1 || src.clusterCalls[0] != "prod-east" {
		t.Fatalf("drill-down calls = %v", src.clusterCalls)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	first := tbl.Rows[0]
	if first["code"] != "BRL" || first["cluster"] != "prod-east" || first["project"] != "billing" {
		t.Fatalf("row = %v", first)
	}
	if first["value"] != 12.5 || tbl.Rows[1]["value"] != 7.25 {
		t.Fatalf("values = %v / %v", first["value"], tbl.Rows[1]["value"])
	}
	if first["Filter Month"] != "2026-07" {
		t.Fatalf("Filter Month = %v", first["Filter Month"])
	}
}

func TestClusterProjectsSkipsFailedCluster(t *testing.T) {
	data := costDataWithCluster("prod-east", "2026-07-01")
	src := &fakeSource{
		clusterProjects: func(string) ([]costing.CostDay, error) {
			return nil, context.DeadlineExceeded
		},
	}
	tbl := ClusterProjects(context.Background(), src, data, "2026-07-01", "2026-07-31", "BRL")
	if len(tbl.Rows) != 0 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
}

func projectCostData(project string, dates ...string) *costing.CostData {
	var days []costing.CostDay
	for _, d := range dates {
		days = append(days, costing.CostDay{
			Date:    d,
			Entries: []costing.CostEntry{{Name: project, Values: []costing.CostValue{{Date: d}}}},
		})
	}
	return &costing.CostData{
		Sets:   map[string]costing.CostSet{"project": {Days: days}},
		TagKey: "produto",
	}
}

func TestProjectTagsMarkerRowWithoutTags(t *testing.T) {
	data := projectCostData("empty-proj", "2026-07-15")
	src := &fakeSource{
		projectTags: func(string) ([]costing.TagRecord, error) { return nil, nil },
	}
	tbl := ProjectTags(context.Background(), src, data, "2026-07-01", "2026-07-31", "BRL")
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	r := tbl.Rows[0]
	if r["key"] != nil || r["values"] != nil || r["enabled"] != nil {
		t.Fatalf("marker row must be all null: %v", r)
	}
	if r["project"] != "empty-proj" || r["Filter Month"] != "2026-07" {
		t.Fatalf("row = %v", r)
	}
}

func TestProjectTagsRowPerValue(t *testing.T) {
	enabled := true
	data := projectCostData("billing", "2026-07-01", "2026-07-02")
	src := &fakeSource{
		projectTags: func(string) ([]costing.TagRecord, error) {
			return []costing.TagRecord{
				{Key: "produto", Values: []string{"loja", "infra"}, Enabled: &enabled},
				{Key: "squad", Values: nil},
			}, nil
		},
	}
	tbl := ProjectTags(context.Background(), src, data, "2026-07-01", "2026-07-31", "BRL")

	// Same month-start for both days: one distinct pair, one tags call.
	if len(src.tagCalls) != 1 {
		t.Fatalf("tags calls = %v", src.tagCalls)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["values"] != "loja" || tbl.Rows[1]["values"] != "infra" {
		t.Fatalf("value rows = %v / %v", tbl.Rows[0], tbl.Rows[1])
	}
	if tbl.Rows[0]["enabled"] != true {
		t.Fatalf("enabled = %v", tbl.Rows[0]["enabled"])
	}
	// A key without values keeps the key, nulls the value, and enabled stays
	// null when the API omitted it.
	last := tbl.Rows[2]
	if last["key"] != "squad" || last["values"] != nil || last["enabled"] != nil {
		t.Fatalf("valueless key row = %v", last)
	}
}

func TestDailyUsageNullPassthroughAndMeta(t *testing.T) {
	count := 3
	src := &fakeSource{
		usage: func(usageCode, dimension, tagKey string) (*costing.UsageSet, error) {
			if dimension != "cluster" {
				return &costing.UsageSet{}, nil
			}
			units := "Core-Hours"
			return &costing.UsageSet{
				Count: &count,
				Days: []costing.UsageDay{{
					Date: "2026-07-01",
					Entries: []costing.UsageEntry{{
						Name: "prod-east",
						Values: []costing.UsageValue{{
							Usage: &costing.UsageQuantity{Value: f(8), Units: &units},
						}},
					}},
				}},
			}, nil
		},
	}

	tbl := DailyUsage(context.Background(), src, []string{"compute"}, []string{"produto"}, "2026-07-01", "2026-07-31", "BRL")
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	r := tbl.Rows[0]
	if r["Usage Name"] != "CPU" || r["Group By"] != "Cluster" {
		t.Fatalf("row = %v", r)
	}
	if r["meta.count"] != 3 {
		t.Fatalf("meta.count = %v", r["meta.count"])
	}
	if r["meta.currency"] != "BRL" {
		t.Fatalf("missing meta currency must fall back to the run currency, got %v", r["meta.currency"])
	}
	if r["values.usage.value"] != 8.0 || r["values.usage.units"] != "Core-Hours" {
		t.Fatalf("usage cells = %v / %v", r["values.usage.value"], r["values.usage.units"])
	}
	// Absent quantities stay null, no zero coalescing here.
	if r["values.request.value"] != nil || r["values.capacity.count"] != nil {
		t.Fatalf("absent quantities must stay null: %v", r)
	}
	for _, col := range UsageColumns {
		if _, ok := r[col]; !ok {
			t.Fatalf("column %q missing from the usage row", col)
		}
	}
}

func TestDailyUsageCrossesCodesDimensionsAndKeys(t *testing.T) {
	src := &fakeSource{
		usage: func(string, string, string) (*costing.UsageSet, error) {
			return &costing.UsageSet{}, nil
		},
	}
	DailyUsage(context.Background(), src, []string{"compute", "memory"}, []string{"produto", "squad"}, "2026-07-01", "2026-07-31", "BRL")

	// 2 codes x (3 plain dimensions + 2 tag keys) = 10 fetches.
	if len(src.usageCalls) != 10 {
		t.Fatalf("usage calls = %v", src.usageCalls)
	}
	want := map[string]bool{
		"compute/tag/produto": true,
		"memory/tag/squad":    true,
		"compute/project/":    true,
	}
	seen := map[string]bool{}
	for _, call := range src.usageCalls {
		seen[call] = true
	}
	for w := range want {
		if !seen[w] {
			t.Fatalf("missing usage call %q in %v", w, src.usageCalls)
		}
	}
}
