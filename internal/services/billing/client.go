// Package billing fetches and aggregates organization costs from the OpenAI
// billing API.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/version"
)

const (
	costsPath = "/v1/organization/costs"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20
)

// CredentialSource supplies the API key for each request.
type CredentialSource interface {
	Get(ctx context.Context) (string, bool, error)
}

// Config holds configuration for the billing client.
type Config struct {
	BaseURL     string
	PageLimit   int
	MaxPages    int
	FollowPages bool
	Timeout     time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com",
		PageLimit: 100,
		MaxPages:  10,
		Timeout:   30 * time.Second,
	}
}

// Client calls the organization costs endpoint.
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
	config     Config
}

// New creates a billing client. Zero fields in config fall back to defaults;
// a zero Timeout means no client-side timeout.
func New(creds CredentialSource, config Config) *Client {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.PageLimit <= 0 {
		config.PageLimit = def.PageLimit
	}
	if config.MaxPages <= 0 {
		config.MaxPages = def.MaxPages
	}

	return &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// FetchAggregateCost returns the sum of every cost result in window.
func (c *Client) FetchAggregateCost(ctx context.Context, window models.TimeWindow) (float64, error) {
	report, err := c.FetchReport(ctx, window)
	if err != nil {
		return 0, err
	}
	return report.Total, nil
}

// FetchReport fetches window and returns the total with a per-day breakdown.
func (c *Client) FetchReport(ctx context.Context, window models.TimeWindow) (*models.CostReport, error) {
	apiKey, err := c.credential(ctx)
	if err != nil {
		return nil, err
	}

	agg := newAggregator(window)
	page := ""

	for n := 1; ; n++ {
		resp, err := c.fetchPage(ctx, apiKey, window, page)
		if err != nil {
			return nil, err
		}
		agg.add(resp.Data)

		if !resp.HasMore {
			break
		}
		if !c.config.FollowPages || resp.NextPage == "" || n >= c.config.MaxPages {
			agg.truncated = true
			logger.Warn("cost report truncated; more pages available",
				"window", window.Key(), "pages", n, "follow_pages", c.config.FollowPages)
			break
		}
		page = resp.NextPage
	}

	return agg.report(), nil
}

func (c *Client) credential(ctx context.Context) (string, error) {
	if c.creds == nil {
		return "", ErrMissingCredential
	}
	key, ok, err := c.creds.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", ErrMissingCredential
	}
	return key, nil
}

func (c *Client) costsURL(window models.TimeWindow, page string) string {
	q := url.Values{}
	q.Set("start_time", strconv.FormatInt(window.Start, 10))
	q.Set("end_time", strconv.FormatInt(window.End, 10))
	q.Set("limit", strconv.Itoa(c.config.PageLimit))
	if page != "" {
		q.Set("page", page)
	}
	return c.config.BaseURL + costsPath + "?" + q.Encode()
}

func (c *Client) fetchPage(ctx context.Context, apiKey string, window models.TimeWindow, page string) (*models.CostsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.costsURL(window, page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create costs request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "oct/"+version.GetVersion())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("costs request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read costs response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, classify(resp.StatusCode, body)
	}

	var costs models.CostsResponse
	if err := json.Unmarshal(body, &costs); err != nil {
		return nil, &StatusError{
			Kind:       ErrMalformedResponse,
			Err:        err,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return &costs, nil
}

// aggregator folds buckets from one or more pages into a report.
type aggregator struct {
	window     models.TimeWindow
	total      float64
	daily      map[string]float64
	currencies map[string]struct{}
	truncated  bool
}

func newAggregator(window models.TimeWindow) *aggregator {
	return &aggregator{
		window:     window,
		daily:      make(map[string]float64),
		currencies: make(map[string]struct{}),
	}
}

func (a *aggregator) add(buckets []models.CostBucket) {
	for _, b := range buckets {
		date := time.Unix(b.StartTime, 0).UTC().Format("2006-01-02")
		dayTotal := a.daily[date]

		for _, r := range b.Results {
			v, ok := r.Amount.Value.Float()
			if !ok {
				continue
			}
			dayTotal += v
			a.total += v
			if cur := strings.ToLower(strings.TrimSpace(r.Amount.Currency)); cur != "" {
				a.currencies[cur] = struct{}{}
			}
		}

		a.daily[date] = dayTotal
	}
}

func (a *aggregator) report() *models.CostReport {
	report := &models.CostReport{
		Window:    a.window,
		Total:     a.total,
		Truncated: a.truncated,
		FetchedAt: time.Now(),
	}

	for date, amount := range a.daily {
		report.Daily = append(report.Daily, models.DailyCost{Date: date, Amount: amount})
	}
	slices.SortFunc(report.Daily, func(x, y models.DailyCost) int {
		return strings.Compare(x.Date, y.Date)
	})

	for cur := range a.currencies {
		report.Currencies = append(report.Currencies, cur)
	}
	slices.Sort(report.Currencies)

	return report
}
