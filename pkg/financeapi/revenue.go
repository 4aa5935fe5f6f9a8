package financeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
)

// DefaultTimeseriesDays is used when callers pass a non-positive window.
const DefaultTimeseriesDays = 14

// RevenueSummary returns headline revenue figures.
func (c *Client) RevenueSummary(ctx context.Context) (*models.RevenueSummary, error) {
	raw, err := c.get(ctx, "revenue_summary", "/admin/revenue/summary", nil)
	if err != nil {
		return nil, err
	}
	var summary models.RevenueSummary
	if err := decodeObject(raw, &summary); err != nil {
		return nil, fmt.Errorf("financeapi revenue_summary: %w", err)
	}
	if summary.ByCourse == nil {
		summary.ByCourse = []models.CourseRevenue{}
	}
	return &summary, nil
}

// RevenueTimeseries returns daily revenue for the last days days.
func (c *Client) RevenueTimeseries(ctx context.Context, days int) (*models.RevenueTimeseries, error) {
	if days <= 0 {
		days = DefaultTimeseriesDays
	}
	raw, err := c.get(ctx, "revenue_timeseries", "/admin/revenue/timeseries", url.Values{"days": {strconv.Itoa(days)}})
	if err != nil {
		return nil, err
	}
	var series models.RevenueTimeseries
	if err := decodeObject(raw, &series); err != nil {
		return nil, fmt.Errorf("financeapi revenue_timeseries: %w", err)
	}
	if series.Series == nil {
		series.Series = []models.RevenuePoint{}
	}
	return &series, nil
}

func decodeObject(raw json.RawMessage, dest interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected object", ErrUnexpectedShape)
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}
