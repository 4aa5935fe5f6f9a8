package models

import (
	"encoding/json"
	"time"
)

// Student is a learner as listed by the instructor API. Fields the API sends
// beyond the declared ones are kept in Extra and written back on encode.
type Student struct {
	ID          FlexID     `json:"id"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Email       string     `json:"email,omitempty"`
	CourseTitle string     `json:"courseTitle,omitempty"`
	EnrolledAt  *time.Time `json:"enrolledAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type studentFields Student

var studentKeys = []string{"id", "firstName", "lastName", "email", "courseTitle", "enrolledAt"}

// UnmarshalJSON decodes the declared fields and keeps the rest in Extra.
func (s *Student) UnmarshalJSON(b []byte) error {
	var fields studentFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, key := range studentKeys {
		delete(all, key)
	}
	if len(all) == 0 {
		all = nil
	}
	fields.Extra = all
	*s = Student(fields)
	return nil
}

// MarshalJSON merges Extra back into the object. Declared fields win on conflict.
func (s Student) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(studentFields(s))
	if err != nil || len(s.Extra) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(s.Extra)+len(studentKeys))
	for key, value := range s.Extra {
		merged[key] = value
	}
	var declared map[string]json.RawMessage
	if err := json.Unmarshal(known, &declared); err != nil {
		return nil, err
	}
	for key, value := range declared {
		merged[key] = value
	}
	return json.Marshal(merged)
}
