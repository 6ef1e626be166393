package service

import (
	"context"
	"errors"

	bookingserrors "roombook/internal/bookings/errors"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

// ResourceMatcher is the catalog side of a search.
type ResourceMatcher interface {
	FindMatching(ctx context.Context, minCapacity int, equipment []string) ([]*model.Resource, error)
}

// AvailabilityChecker is the ledger side of a search.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, resourceID string, iv model.Interval) bool
}

type SearchService interface {
	Search(ctx context.Context, iv model.Interval, minCapacity int, equipment []string) ([]*model.Resource, error)
}

type searchService struct {
	resources ResourceMatcher
	ledger    AvailabilityChecker
	log       *logger.Logger
}

func NewSearchService(resources ResourceMatcher, ledger AvailabilityChecker, log *logger.Logger) SearchService {
	return &searchService{
		resources: resources,
		ledger:    ledger,
		log:       log,
	}
}

// Search returns the matching resources that are free for the whole of iv,
// smallest capacity first. Nothing is reserved: a resource returned here can
// still be taken before the caller books it.
func (s *searchService) Search(ctx context.Context, iv model.Interval, minCapacity int, equipment []string) ([]*model.Resource, error) {
	if !iv.Valid() {
		return nil, apperrors.Validation("Start must be before end", map[string]any{
			"start": iv.Start,
			"end":   iv.End,
		}).WithCause(bookingserrors.ErrInvalidInterval)
	}

	candidates, err := s.resources.FindMatching(ctx, minCapacity, equipment)
	if err != nil {
		return nil, err
	}

	available := make([]*model.Resource, 0, len(candidates))
	for _, r := range candidates {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, apperrors.Timeout("Search did not finish in time").WithCause(err)
			}
			return nil, apperrors.Timeout("Search was cancelled").WithCause(err)
		}
		if s.ledger.IsAvailable(ctx, r.ID, iv) {
			available = append(available, r)
		}
	}

	s.log.Debug("Availability search completed",
		"interval", iv.String(),
		"min_capacity", minCapacity,
		"candidates", len(candidates),
		"available", len(available),
	)
	return available, nil
}
