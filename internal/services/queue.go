package services

import (
	"sort"

	"clubportal/internal/domain"
)

// assignQueuePositions fills in derived queue positions for the event's active
// registrations: the first capacity registrations by (date, id) are confirmed (nil
// position), the rest are numbered 1..N. A nil capacity confirms everyone.
// Positions are computed on every read; they are never stored.
func assignQueuePositions(regs []*domain.EventRegistration, capacity *int) {
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Date.Equal(regs[j].Date) {
			return regs[i].ID < regs[j].ID
		}
		return regs[i].Date.Before(regs[j].Date)
	})
	for i, reg := range regs {
		if capacity != nil && i >= *capacity {
			pos := i - *capacity + 1
			reg.QueuePosition = &pos
		} else {
			reg.QueuePosition = nil
		}
	}
}

// queuePositionFor returns the derived position of the registration with the given ID,
// or nil when it is confirmed or not among the active registrations.
func queuePositionFor(regs []*domain.EventRegistration, capacity *int, registrationID string) *int {
	assignQueuePositions(regs, capacity)
	for _, reg := range regs {
		if reg.ID == registrationID {
			return reg.QueuePosition
		}
	}
	return nil
}

// firstWaiting returns the earliest waiting registration, or nil when the queue is
// empty.
func firstWaiting(regs []*domain.EventRegistration, capacity *int) *domain.EventRegistration {
	assignQueuePositions(regs, capacity)
	for _, reg := range regs {
		if reg.QueuePosition != nil && *reg.QueuePosition == 1 {
			return reg
		}
	}
	return nil
}
