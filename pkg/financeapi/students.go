package financeapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// StudentsQuery pages through the instructor's students.
type StudentsQuery struct {
	Page  int
	Limit int
}

// Students lists the caller's most recent students.
func (c *Client) Students(ctx context.Context, q StudentsQuery) (*StudentPage, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	raw, err := c.get(ctx, "students", "/instructor/students", values)
	if err != nil {
		return nil, err
	}
	page, err := DecodeStudentPage(raw)
	if err != nil {
		return nil, fmt.Errorf("financeapi students: %w", err)
	}
	c.logSkipped("students", page.Skipped)
	return page, nil
}
