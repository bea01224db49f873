package redhat

import (
	"context"
	"encoding/json"
	"net/url"

	"oscost/domain/costing"
)

// Currencies returns the currency master list.
func (c *Client) Currencies(ctx context.Context) ([]costing.Currency, error) {
	q := url.Values{
		"filter[limit]": {"15"},
		"limit":         {"100"},
		"offset":        {"0"},
	}
	body, err := c.get(ctx, c.baseURL+"/currency?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var out struct {
		Data *[]costing.Currency `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Data == nil {
		return nil, ErrMalformedPage
	}
	return *out.Data, nil
}

// flexCode decodes either "BRL" or {"code": "BRL"}. The account settings
// endpoint has served both shapes across API revisions.
type flexCode string

func (f *flexCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexCode(s)
		return nil
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*f = flexCode(obj.Code)
	return nil
}

// AccountSettings returns the account default currency and cost type.
func (c *Client) AccountSettings(ctx context.Context) (*costing.AccountSettings, error) {
	body, err := c.get(ctx, c.baseURL+"/account-settings")
	if err != nil {
		return nil, err
	}
	var out struct {
		Data *struct {
			Currency flexCode `json:"currency"`
			CostType flexCode `json:"cost_type"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Data == nil {
		return nil, ErrMalformedPage
	}
	return &costing.AccountSettings{
		Currency: string(out.Data.Currency),
		CostType: string(out.Data.CostType),
	}, nil
}
