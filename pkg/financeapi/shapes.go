package financeapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
)

// SkippedItem describes a list element that could not be decoded and was left out.
type SkippedItem struct {
	Index int
	Err   error
}

// StudentPage is the normalised students listing.
type StudentPage struct {
	Students []models.Student
	Meta     *models.PageMeta
	Skipped  []SkippedItem
}

// PaymentsPage is the normalised payments listing.
type PaymentsPage struct {
	Payments []models.PaymentRecord
	Meta     *models.PageMeta
	Skipped  []SkippedItem
}

// DecodeStudentPage accepts a bare array or a {data: [...], meta} page.
func DecodeStudentPage(raw json.RawMessage) (*StudentPage, error) {
	items, meta, skipped, err := decodeList[models.Student](raw, "data")
	if err != nil {
		return nil, err
	}
	return &StudentPage{Students: items, Meta: meta, Skipped: skipped}, nil
}

// DecodePaymentsPage accepts a {payments: [...], meta} page or a bare array.
func DecodePaymentsPage(raw json.RawMessage) (*PaymentsPage, error) {
	items, meta, skipped, err := decodeList[models.PaymentRecord](raw, "payments")
	if err != nil {
		return nil, err
	}
	return &PaymentsPage{Payments: items, Meta: meta, Skipped: skipped}, nil
}

// decodeList checks the outer shape strictly. Individual elements that fail
// to decode are skipped and reported instead of failing the whole list.
func decodeList[T any](raw json.RawMessage, field string) ([]T, *models.PageMeta, []SkippedItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}

	switch trimmed[0] {
	case '[':
		items, skipped, err := decodeItems[T](trimmed)
		return items, nil, skipped, err
	case '{':
		var page map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		list, ok := page[field]
		if !ok || !isJSONArray(list) {
			return nil, nil, nil, fmt.Errorf("%w: object without %q array", ErrUnexpectedShape, field)
		}
		items, skipped, err := decodeItems[T](list)
		if err != nil {
			return nil, nil, nil, err
		}
		var meta *models.PageMeta
		if rawMeta, ok := page["meta"]; ok && !isJSONNull(rawMeta) {
			meta = &models.PageMeta{}
			if err := json.Unmarshal(rawMeta, meta); err != nil {
				return nil, nil, nil, fmt.Errorf("%w: meta: %v", ErrUnexpectedShape, err)
			}
		}
		return items, meta, skipped, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: expected array or object", ErrUnexpectedShape)
	}
}

func decodeItems[T any](raw json.RawMessage) ([]T, []SkippedItem, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	items := make([]T, 0, len(elements))
	var skipped []SkippedItem
	for i, element := range elements {
		trimmed := bytes.TrimSpace(element)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			skipped = append(skipped, SkippedItem{Index: i, Err: fmt.Errorf("%w: element is not an object", ErrUnexpectedShape)})
			continue
		}
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			skipped = append(skipped, SkippedItem{Index: i, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
