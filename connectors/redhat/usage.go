package redhat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"oscost/domain/costing"
)

// Usage fetches one usage report (compute, memory or volumes) grouped by one
// dimension, walking the same offset pagination as the cost reports. For the
// tag dimension a tag key must be supplied.
func (c *Client) Usage(ctx context.Context, usageCode, dimension, tagKey, start, end string) (*costing.UsageSet, error) {
	params := url.Values{
		"start_date": {start},
		"end_date":   {end},
	}
	if dimension == "tag" {
		if tagKey == "" {
			return nil, fmt.Errorf("usage %s: tag dimension needs a tag key", usageCode)
		}
		params.Set("group_by[tag:"+tagKey+"]", "*")
	} else {
		params.Set("group_by["+dimension+"]", "*")
	}

	items, meta, err := c.fetchPages(ctx, c.baseURL+"/reports/openshift/"+usageCode+"/", params, usagePageSize)
	if err != nil && !errors.Is(err, ErrMalformedPage) {
		return nil, err
	}

	set := &costing.UsageSet{Days: decodeUsageDays(items, dimension, tagKey)}
	if meta != nil {
		set.Count = meta.Count
		set.Currency = meta.Currency
	}
	return set, nil
}

// decodeUsageDays mirrors decodeCostDays for the usage payload shape. Entries
// without a name are dropped.
func decodeUsageDays(items []json.RawMessage, dimension, tagKey string) []costing.UsageDay {
	var days []costing.UsageDay
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

		listField := dimension + "s"
		nameFields := []string{dimension}
		if dimension == "tag" {
			listField = tagKey + "s"
			if fields[listField] == nil {
				listField = "tags"
			}
			nameFields = []string{tagKey, "tag", "value", "key"}
		}
		groupsRaw := fields[listField]
		if groupsRaw == nil {
			continue
		}
		var groups []map[string]json.RawMessage
		if err := json.Unmarshal(groupsRaw, &groups); err != nil {
			continue
		}

		day := costing.UsageDay{Date: date}
		for _, g := range groups {
			var e costing.UsageEntry
			for _, nf := range nameFields {
				v, ok := g[nf]
				if !ok {
					continue
				}
				var s string
				if json.Unmarshal(v, &s) == nil && s != "" {
					e.Name = s
					break
				}
			}
			if e.Name == "" {
				continue
			}
			if v, ok := g["values"]; ok {
				_ = json.Unmarshal(v, &e.Values)
			}
			day.Entries = append(day.Entries, e)
		}
		days = append(days, day)
	}
	return days
}
