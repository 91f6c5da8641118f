package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"clubportal/internal/domain"
)

type paymentService struct {
	paymentRepo domain.PaymentRepository
	clock       domain.Clock
}

// NewPaymentService returns a PaymentService backed by the given repository.
func NewPaymentService(paymentRepo domain.PaymentRepository, clock domain.Clock) domain.PaymentService {
	return &paymentService{paymentRepo: paymentRepo, clock: clock}
}

func (s *paymentService) CreatePayment(ctx context.Context, reg *domain.EventRegistration, processedBy *domain.Member, payType domain.PaymentType) (*domain.Payment, error) {
	if processedBy == nil {
		return nil, domain.ErrInvalidInput
	}
	if !payType.Valid() || payType == domain.PaymentNone {
		return nil, domain.ErrInvalidInput
	}
	payment := &domain.Payment{
		ID:             uuid.NewString(),
		RegistrationID: reg.ID,
		Type:           payType,
		ProcessedByID:  processedBy.ID,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	reg.PaymentID = &payment.ID
	return payment, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, reg *domain.EventRegistration, actor *domain.Member) error {
	if actor == nil {
		return domain.ErrInvalidInput
	}
	if reg.PaymentID == nil {
		return domain.ErrNotFound
	}
	if err := s.paymentRepo.Delete(ctx, *reg.PaymentID); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	reg.PaymentID = nil
	return nil
}
