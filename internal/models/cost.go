// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CostsResponse is the body returned by the organization costs endpoint.
type CostsResponse struct {
	Object   string       `json:"object"`
	Data     []CostBucket `json:"data"`
	HasMore  bool         `json:"has_more"`
	NextPage string       `json:"next_page"`
}

// CostBucket groups cost results for a sub-window, typically one calendar day.
type CostBucket struct {
	Object    string       `json:"object"`
	StartTime int64        `json:"start_time"`
	EndTime   int64        `json:"end_time"`
	Results   []CostResult `json:"results"`
}

// CostResult is a single line item inside a bucket.
type CostResult struct {
	Object string     `json:"object"`
	Amount CostAmount `json:"amount"`
}

// CostAmount carries a monetary value and its currency tag.
type CostAmount struct {
	Value    Amount `json:"value"`
	Currency string `json:"currency"`
}

// Amount is a monetary value reported either as a JSON number or a numeric
// string. Values that cannot be coerced are kept as invalid and contribute
// nothing to sums.
type Amount struct {
	value float64
	valid bool
}

// NewAmount returns a valid amount holding v.
func NewAmount(v float64) Amount {
	return Amount{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// Float returns the coerced value and whether it parsed.
func (a Amount) Float() (float64, bool) {
	if !a.valid {
		return 0, false
	}
	return a.value, true
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes to
// an invalid amount instead of failing the whole response.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	*a = NewAmount(v)
	return nil
}

// MarshalJSON writes the amount as a number, or null when invalid.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.value, 'f', -1, 64)), nil
}

// DailyCost is the total for one bucket, keyed by its start date.
type DailyCost struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// CostReport is the aggregate of every result in a window. Truncated is set
// when the server had more pages than were fetched.
type CostReport struct {
	Window     TimeWindow  `json:"window"`
	Total      float64     `json:"total"`
	Currencies []string    `json:"currencies"`
	Daily      []DailyCost `json:"daily"`
	Truncated  bool        `json:"truncated"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// MixedCurrencies reports whether results with more than one currency were
// summed together.
func (r *CostReport) MixedCurrencies() bool {
	return r != nil && len(r.Currencies) > 1
}

// RunningTotals returns the cumulative sum after each day.
func (r *CostReport) RunningTotals() []float64 {
	if r == nil {
		return nil
	}
	totals := make([]float64, len(r.Daily))
	sum := 0.0
	for i, d := range r.Daily {
		sum += d.Amount
		totals[i] = sum
	}
	return totals
}
