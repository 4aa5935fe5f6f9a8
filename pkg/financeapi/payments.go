package financeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
)

// PaymentsQuery filters the instructor payments listing.
type PaymentsQuery struct {
	Page   int
	Limit  int
	Status models.PaymentStatus
}

func (q PaymentsQuery) values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	return values
}

// Payments lists payments visible to the caller.
func (c *Client) Payments(ctx context.Context, q PaymentsQuery) (*PaymentsPage, error) {
	raw, err := c.get(ctx, "payments", "/instructor/payments", q.values())
	if err != nil {
		return nil, err
	}
	page, err := DecodePaymentsPage(raw)
	if err != nil {
		return nil, fmt.Errorf("financeapi payments: %w", err)
	}
	c.logSkipped("payments", page.Skipped)
	return page, nil
}

// PendingPurchases lists manual purchases awaiting confirmation.
func (c *Client) PendingPurchases(ctx context.Context) ([]models.PaymentRecord, error) {
	raw, err := c.get(ctx, "purchases_pending", "/admin/purchases/pending", nil)
	if err != nil {
		return nil, err
	}
	if !isJSONArray(raw) {
		return nil, fmt.Errorf("financeapi purchases_pending: %w: expected array", ErrUnexpectedShape)
	}
	records, skipped, err := decodeItems[models.PaymentRecord](raw)
	if err != nil {
		return nil, fmt.Errorf("financeapi purchases_pending: %w", err)
	}
	c.logSkipped("purchases_pending", skipped)
	return records, nil
}

type markPaidBody struct {
	Amount *float64 `json:"amount,omitempty"`
}

// MarkPaid confirms a manual payment for an enrollment. A nil amount lets the
// finance API use the course price.
func (c *Client) MarkPaid(ctx context.Context, enrollmentID string, amount *float64) (*models.MarkPaidResult, error) {
	enrollmentID = strings.TrimSpace(enrollmentID)
	if enrollmentID == "" {
		return nil, errors.New("financeapi mark_paid: enrollment id is required")
	}
	path := "/admin/purchases/" + url.PathEscape(enrollmentID) + "/mark-paid"
	raw, err := c.post(ctx, "mark_paid", path, markPaidBody{Amount: amount})
	if err != nil {
		return nil, err
	}
	var result models.MarkPaidResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("financeapi mark_paid: %w: %v", ErrUnexpectedShape, err)
	}
	return &result, nil
}
