package domain

import (
	"context"
	"time"
)

// PaymentType identifies how a registration was paid.
type PaymentType string

const (
	PaymentNone PaymentType = "no_payment"
	PaymentCash PaymentType = "cash_payment"
	PaymentCard PaymentType = "card_payment"
	PaymentWire PaymentType = "wire_payment"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentNone, PaymentCash, PaymentCard, PaymentWire:
		return true
	}
	return false
}

// Payment represents a processed payment linked 1:1 to a registration.
// swagger:model Payment
type Payment struct {
	ID             string      `json:"id"`
	RegistrationID string      `json:"registration_id"`
	Type           PaymentType `json:"type"`
	ProcessedByID  string      `json:"processed_by_id"`
	CreatedAt      time.Time   `json:"created_at"`
}

// PaymentRepository defines storage operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id string) error
}

// PaymentService creates and removes payments linked to registrations.
type PaymentService interface {
	// CreatePayment records a payment for the registration, processed by the actor,
	// and links it to the registration.
	CreatePayment(ctx context.Context, reg *EventRegistration, processedBy *Member, payType PaymentType) (*Payment, error)
	// DeletePayment removes the registration's linked payment.
	DeletePayment(ctx context.Context, reg *EventRegistration, actor *Member) error
}
