package services

import (
	"context"
	"fmt"
	"log/slog"

	"clubportal/internal/domain"
)

// retentionDays is how long registration data is kept after an event ends.
// Years can be 366 days; scrubbing a day or two early beats scrubbing late.
const retentionDays = 365 * 5

type dataMinimisationService struct {
	regRepo domain.EventRegistrationRepository
	clock   domain.Clock
	logger  *slog.Logger
}

// NewDataMinimisationService returns the sweep that redacts registrations of events
// ended five or more years ago.
func NewDataMinimisationService(regRepo domain.EventRegistrationRepository, clock domain.Clock, logger *slog.Logger) domain.DataMinimisationService {
	return &dataMinimisationService{regRepo: regRepo, clock: clock, logger: logger}
}

func (s *dataMinimisationService) Execute(ctx context.Context, dryRun bool) ([]*domain.EventRegistration, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -retentionDays)
	regs, err := s.regRepo.ScrubEndedBefore(ctx, cutoff, dryRun)
	if err != nil {
		return nil, fmt.Errorf("scrub registrations: %w", err)
	}
	s.logger.Info("data minimisation sweep",
		"cutoff", cutoff,
		"affected", len(regs),
		"dry_run", dryRun,
	)
	if regs == nil {
		regs = []*domain.EventRegistration{}
	}
	return regs, nil
}
