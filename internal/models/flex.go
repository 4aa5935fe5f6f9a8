package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexID is an identifier that may arrive as a JSON string or number. It is
// re-encoded in the form it was received in.
type FlexID struct {
	value   string
	numeric bool
}

// StringID builds an identifier encoded as a JSON string.
func StringID(s string) FlexID {
	return FlexID{value: s}
}

// NumberID builds an identifier encoded as a JSON number. s must be a valid
// JSON number literal.
func NumberID(s string) FlexID {
	return FlexID{value: s, numeric: true}
}

// String returns the identifier text.
func (id FlexID) String() string { return id.value }

// IsZero reports whether no identifier was set.
func (id FlexID) IsZero() bool { return id.value == "" }

// UnmarshalJSON accepts both "42" and 42.
func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = FlexID{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = NumberID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers back as numbers.
func (id FlexID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// Amount is a monetary value that may arrive as a JSON number or a numeric
// string such as "19.99".
type Amount float64

// Float64 returns the plain value.
func (a Amount) Float64() float64 { return float64(a) }

// UnmarshalJSON accepts 19.99, "19.99" and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("amount %q is not numeric", s)
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	*a = Amount(v)
	return nil
}
