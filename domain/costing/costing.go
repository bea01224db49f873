// Package costing models the Red Hat Cost Management report payloads once they
// have been decoded at the API boundary. Numbers and flags the API may omit or
// null out are pointers so downstream coalescing can tell "absent" from a real
// zero.
package costing

// Money is one monetary bucket of a cost snapshot.
type Money struct {
	Value *float64 `json:"value"`
	Units string   `json:"units"`
}

// CostBuckets groups the monetary buckets of one cost category. The
// distributed buckets only appear under the "cost" category.
type CostBuckets struct {
	Raw                          Money `json:"raw"`
	Markup                       Money `json:"markup"`
	Usage                        Money `json:"usage"`
	Distributed                  Money `json:"distributed"`
	PlatformDistributed          Money `json:"platform_distributed"`
	WorkerUnallocatedDistributed Money `json:"worker_unallocated_distributed"`
	Total                        Money `json:"total"`
}

// CostValue is one metric snapshot for an entity on one day.
type CostValue struct {
	Date           string      `json:"date"`
	Classification string      `json:"classification"`
	SourceUUID     []string    `json:"source_uuid"`
	Clusters       []string    `json:"clusters"`
	Infrastructure CostBuckets `json:"infrastructure"`
	Supplementary  CostBuckets `json:"supplementary"`
	Cost           CostBuckets `json:"cost"`
	DeltaValue     *float64    `json:"delta_value"`
	DeltaPercent   *float64    `json:"delta_percent"`
}

// CostEntry is one grouped entity (a cluster, project, node or tag value)
// inside a day record.
type CostEntry struct {
	Name   string
	Values []CostValue
}

// CostDay is one day record of a cost report.
type CostDay struct {
	Date    string
	Entries []CostEntry
}

// CostSet is everything one group-by dimension returned.
type CostSet struct {
	Days                []CostDay
	DistributedOverhead *bool
}

// CostData is the merged result of the four group-by collections, keyed by
// dimension code.
type CostData struct {
	Sets   map[string]CostSet
	TagKey string
}

// TagRecord is one tag key with its values as reported by the tags endpoint.
type TagRecord struct {
	Key     string   `json:"key"`
	Enabled *bool    `json:"enabled"`
	Values  []string `json:"values"`
}

// TagKeySet is the tag key listing with its reported total count.
type TagKeySet struct {
	Count int
	Tags  []TagRecord
}

// Currency is one row of the currency master list.
type Currency struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// AccountSettings holds the account default currency and cost type.
type AccountSettings struct {
	Currency string
	CostType string
}

// UsageQuantity is one measured quantity of a usage snapshot. Everything is
// nullable: the usage reports pass absent fields through untouched.
type UsageQuantity struct {
	Value         *float64 `json:"value"`
	Units         *string  `json:"units"`
	Unused        *float64 `json:"unused"`
	UnusedPercent *float64 `json:"unused_percent"`
	Count         *float64 `json:"count"`
	CountUnits    *string  `json:"count_units"`
}

// UsageValue is one usage snapshot for an entity on one day.
type UsageValue struct {
	Usage    *UsageQuantity `json:"usage"`
	Request  *UsageQuantity `json:"request"`
	Limit    *UsageQuantity `json:"limit"`
	Capacity *UsageQuantity `json:"capacity"`
}

// UsageEntry is one grouped entity inside a usage day record.
type UsageEntry struct {
	Name   string
	Values []UsageValue
}

// UsageDay is one day record of a usage report.
type UsageDay struct {
	Date    string
	Entries []UsageEntry
}

// UsageSet is one usage report result (one usage code crossed with one
// dimension).
type UsageSet struct {
	Count    *int
	Currency string
	Days     []UsageDay
}
