package models

import (
	"encoding/json"
	"time"
)

// PaymentStatus enumerates upstream payment states.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Valid reports whether the status is one the finance API emits.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPending, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentProvider enumerates payment channels.
type PaymentProvider string

const (
	PaymentProviderStripe         PaymentProvider = "STRIPE"
	PaymentProviderPayPal         PaymentProvider = "PAYPAL"
	PaymentProviderManualWhatsApp PaymentProvider = "MANUAL_WHATSAPP"
)

// PaymentUniversity is the institution offering a course.
type PaymentUniversity struct {
	Name string `json:"name"`
}

// PaymentCourse is the course a payment was made for.
type PaymentCourse struct {
	Title      string             `json:"title"`
	Price      *Amount            `json:"price,omitempty"`
	University *PaymentUniversity `json:"university,omitempty"`
}

// PaymentUser is the purchasing user.
type PaymentUser struct {
	ID        FlexID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (u PaymentUser) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// PaymentRecord is an immutable snapshot of a payment as reported by the finance API.
type PaymentRecord struct {
	ID           FlexID          `json:"id"`
	Amount       Amount          `json:"amount"`
	Currency     string          `json:"currency"`
	Status       PaymentStatus   `json:"status"`
	Provider     PaymentProvider `json:"provider"`
	CreatedAt    time.Time       `json:"createdAt"`
	Course       PaymentCourse   `json:"course"`
	EnrollmentID string          `json:"enrollmentId"`
	User         PaymentUser     `json:"user"`
}

// PageMeta is the pagination block of the finance API.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// MarkPaidResult is returned after an enrollment is marked as paid manually.
type MarkPaidResult struct {
	Message    string          `json:"message"`
	Enrollment json.RawMessage `json:"enrollment,omitempty"`
}
