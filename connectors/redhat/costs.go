package redhat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"

	"oscost/domain/costing"
)

// groupBy is one group-by configuration of the cost report.
type groupBy struct {
	code   string
	params map[string]string
}

// groupBys returns the four cost dimensions in collection order. The node
// report needs the cluster group-by as well so nodes arrive nested under
// their cluster.
func groupBys(tagKey string) []groupBy {
	return []groupBy{
		{code: "cluster", params: map[string]string{"group_by[cluster]": "*"}},
		{code: "node", params: map[string]string{"group_by[cluster]": "*", "group_by[node]": "*"}},
		{code: "project", params: map[string]string{"group_by[project]": "*"}},
		{code: "tag", params: map[string]string{"group_by[tag:" + tagKey + "]": "*"}},
	}
}

// CollectCosts runs the four group-by extractions for the period. Failures are
// isolated per dimension: a failed dimension contributes an empty set and an
// entry in the returned error map. Only authentication failures abort the
// collection.
func (c *Client) CollectCosts(ctx context.Context, start, end, currency, tagKey string) (*costing.CostData, map[string]error, error) {
	data := &costing.CostData{Sets: map[string]costing.CostSet{}, TagKey: tagKey}
	dimErrs := map[string]error{}

	for _, gb := range groupBys(tagKey) {
		slog.Info("phase.costs.fetch.start", "dimension", gb.code)
		params := url.Values{
			"currency":       {currency},
			"start_date":     {start},
			"end_date":       {end},
			"order_by[cost]": {"desc"},
		}
		for k, v := range gb.params {
			params.Set(k, v)
		}

		items, meta, err := c.fetchPages(ctx, c.baseURL+"/reports/openshift/costs/", params, costPageSize)
		if err != nil && !errors.Is(err, ErrMalformedPage) {
			if !recoverable(err) {
				return nil, nil, err
			}
			slog.Warn("phase.costs.fetch.error", "dimension", gb.code, "error", err)
			dimErrs[gb.code] = err
			data.Sets[gb.code] = costing.CostSet{}
			continue
		}

		set := costing.CostSet{Days: decodeCostDays(items, gb.code, tagKey)}
		if meta != nil {
			set.DistributedOverhead = meta.DistributedOverhead
		}
		data.Sets[gb.code] = set
		slog.Info("phase.costs.fetch.done", "dimension", gb.code, "days", len(set.Days))
	}
	return data, dimErrs, nil
}

// ClusterProjects fetches project-level daily costs filtered to one cluster.
func (c *Client) ClusterProjects(ctx context.Context, cluster, start, end, currency string) ([]costing.CostDay, error) {
	params := url.Values{
		"currency":          {currency},
		"filter[cluster]":   {cluster},
		"start_date":        {start},
		"end_date":          {end},
		"group_by[project]": {"*"},
	}
	items, _, err := c.fetchPages(ctx, c.baseURL+"/reports/openshift/costs/", params, drillPageSize)
	if err != nil && !errors.Is(err, ErrMalformedPage) {
		return nil, err
	}
	return decodeCostDays(items, "project", ""), nil
}

// ProjectTags lists the tag keys and values attached to one project over the
// period. The endpoint is not paginated.
func (c *Client) ProjectTags(ctx context.Context, project, start, end string) ([]costing.TagRecord, error) {
	q := url.Values{
		"filter[project]":    {project},
		"filter[resolution]": {"daily"},
		"start_date":         {start},
		"end_date":           {end},
	}
	body, err := c.get(ctx, c.baseURL+"/tags/openshift?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var out struct {
		Data *[]costing.TagRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Data == nil {
		return nil, ErrMalformedPage
	}
	return *out.Data, nil
}

// TagKeys lists the tag keys known to the account.
func (c *Client) TagKeys(ctx context.Context) (*costing.TagKeySet, error) {
	body, err := c.get(ctx, c.baseURL+"/tags/openshift?limit=1000")
	if err != nil {
		return nil, err
	}
	var out struct {
		Meta *pageMeta            `json:"meta"`
		Data *[]costing.TagRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Data == nil {
		return nil, ErrMalformedPage
	}
	set := &costing.TagKeySet{Tags: *out.Data}
	if out.Meta != nil && out.Meta.Count != nil {
		set.Count = *out.Meta.Count
	}
	return set, nil
}

// decodeCostDays turns raw day records into typed days. The field carrying the
// grouped entries depends on the dimension; records without a usable date are
// dropped.
func decodeCostDays(items []json.RawMessage, dimension, tagKey string) []costing.CostDay {
	var days []costing.CostDay
	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		var date string
		if d, ok := fields["date"]; ok {
			_ = json.Unmarshal(d, &date)
		}
		if date == "" {
			continue
		}

		day := costing.CostDay{Date: date}
		switch dimension {
		case "cluster":
			day.Entries = decodeEntries(fields["clusters"], "cluster")
		case "project":
			day.Entries = decodeEntries(fields["projects"], "project")
		case "node":
			day.Entries = decodeNodeEntries(fields["clusters"])
		case "tag":
			day.Entries = decodeTagEntries(fields, tagKey)
		}
		days = append(days, day)
	}
	return days
}

func decodeEntries(raw json.RawMessage, nameField string) []costing.CostEntry {
	if raw == nil {
		return nil
	}
	var groups []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil
	}
	var entries []costing.CostEntry
	for _, g := range groups {
		var e costing.CostEntry
		if v, ok := g[nameField]; ok {
			_ = json.Unmarshal(v, &e.Name)
		}
		if v, ok := g["values"]; ok {
			_ = json.Unmarshal(v, &e.Values)
		}
		entries = append(entries, e)
	}
	return entries
}

// decodeNodeEntries handles the double nesting of the node report: each day
// holds clusters, each cluster holds its nodes.
func decodeNodeEntries(raw json.RawMessage) []costing.CostEntry {
	if raw == nil {
		return nil
	}
	var clusters []struct {
		Nodes []map[string]json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &clusters); err != nil {
		return nil
	}
	var entries []costing.CostEntry
	for _, cl := range clusters {
		for _, n := range cl.Nodes {
			var e costing.CostEntry
			if v, ok := n["node"]; ok {
				_ = json.Unmarshal(v, &e.Name)
			}
			if v, ok := n["values"]; ok {
				_ = json.Unmarshal(v, &e.Values)
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// decodeTagEntries finds the tag day entries under the pluralized key field
// (e.g. "produtos" for tag key "produto"), falling back to "tags". The entry
// name sits under the key itself or one of the known fallbacks.
func decodeTagEntries(fields map[string]json.RawMessage, tagKey string) []costing.CostEntry {
	raw := fields[tagKey+"s"]
	if raw == nil {
		raw = fields["tags"]
	}
	if raw == nil {
		return nil
	}
	var groups []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil
	}
	var entries []costing.CostEntry
	for _, g := range groups {
		var e costing.CostEntry
		for _, nameField := range []string{tagKey, "tag", "value", "key"} {
			v, ok := g[nameField]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(v, &s) == nil && s != "" {
				e.Name = s
				break
			}
		}
		if v, ok := g["values"]; ok {
			_ = json.Unmarshal(v, &e.Values)
		}
		entries = append(entries, e)
	}
	return entries
}
