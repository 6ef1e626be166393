package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/events"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/validator"
	"roombook/pkg/clock"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	maxIDAttempts  = 5
	publishTimeout = 5 * time.Second
)

// ResourceExistsFunc reports whether a resource id is known to the catalog.
// It must not block on anything the ledger holds.
type ResourceExistsFunc func(resourceID string) bool

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	CreateBooking(ctx context.Context, requesterID, resourceID string, iv model.Interval) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string) (*model.Booking, error)
	IsAvailable(ctx context.Context, resourceID string, iv model.Interval) bool
	CheckAvailability(ctx context.Context, resourceID string, iv model.Interval) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	BookingsFor(ctx context.Context, requesterID string) ([]*model.Booking, error)
	BookingsOn(ctx context.Context, resourceID string) ([]*model.Booking, error)
	BusinessHours() model.BusinessHours
	// Flush waits for in-flight event deliveries.
	Flush()
}

type bookingService struct {
	repo           repository.BookingRepository
	validator      *validator.BookingValidator
	resourceExists ResourceExistsFunc
	hours          model.BusinessHours
	clock          clock.Clock
	publisher      events.Publisher
	log            *logger.Logger

	inflight sync.WaitGroup
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	resourceExists ResourceExistsFunc,
	hours model.BusinessHours,
	clk clock.Clock,
	publisher events.Publisher,
	log *logger.Logger,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:           repo,
		validator:      validator,
		resourceExists: resourceExists,
		hours:          hours,
		clock:          clk,
		publisher:      publisher,
		log:            log,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}
	sanitizer.SanitizeBookingRequest(req)
	return s.CreateBooking(ctx, req.RequesterID, req.ResourceID, model.Interval{Start: req.Start, End: req.End})
}

// CreateBooking accepts a booking or reports the first rule it breaks, in
// this order: interval ordering, past start, business hours, request shape,
// unknown resource, overlap.
func (s *bookingService) CreateBooking(ctx context.Context, requesterID, resourceID string, iv model.Interval) (*model.Booking, error) {
	if err := s.checkRules(iv); err != nil {
		s.log.Warn("Booking rejected",
			"requester_id", requesterID,
			"resource_id", resourceID,
			"interval", iv.String(),
			"error", err,
		)
		return nil, err
	}
	if err := s.validate(&model.BookingRequest{
		RequesterID: requesterID,
		ResourceID:  resourceID,
		Start:       iv.Start,
		End:         iv.End,
	}); err != nil {
		return nil, err
	}
	// Evaluated before locking: the catalog is never consulted under a
	// ledger lock.
	if !s.resourceExists(resourceID) {
		s.log.Warn("Booking rejected", "resource_id", resourceID, "error", bookingserrors.ErrResourceNotFound)
		return nil, apperrors.NotFoundWithID("Resource", resourceID).WithCause(bookingserrors.ErrResourceNotFound)
	}

	booking := &model.Booking{
		ResourceID:  resourceID,
		RequesterID: requesterID,
		Start:       iv.Start,
		End:         iv.End,
		Status:      model.BookingPending,
	}

	err := s.repo.ExecuteTransaction(ctx, resourceID, func(tx repository.Tx) error {
		if conflict := tx.FindOverlapping(iv); conflict != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking overlaps existing booking %s (%s)", conflict.ID, conflict.Interval(),
			)).WithDetails(map[string]any{
				"conflicting_booking_id": conflict.ID,
			}).WithCause(&bookingserrors.OverlapError{BookingID: conflict.ID})
		}

		booking.Status = model.BookingActive
		booking.CreatedAt = s.clock.Now()
		var err error
		for range maxIDAttempts {
			booking.ID = newBookingID()
			if err = tx.Insert(booking); !errors.Is(err, repository.ErrDuplicateID) {
				break
			}
		}
		if err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrOverlapConflict) {
			s.log.Warn("Booking rejected",
				"requester_id", requesterID,
				"resource_id", resourceID,
				"interval", iv.String(),
				"error", err,
			)
		} else {
			s.log.Error("Failed to create booking", "resource_id", resourceID, "error", err)
		}
		return nil, asAppError(err, "Failed to create booking")
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"requester_id", booking.RequesterID,
		"interval", iv.String(),
	)
	s.publish(ctx, events.EventBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if requesterID == "" {
		return nil, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.bookingLookupError(bookingID, err)
	}

	var cancelled *model.Booking
	err = s.repo.ExecuteTransaction(ctx, existing.ResourceID, func(tx repository.Tx) error {
		current, err := tx.FindByID(bookingID)
		if err != nil {
			return s.bookingLookupError(bookingID, err)
		}
		if current.RequesterID != requesterID {
			return apperrors.Forbidden("Only the requester who created the booking can cancel it").
				WithCause(bookingserrors.ErrNotOwner)
		}
		cancelled, err = tx.Delete(bookingID)
		if err != nil {
			return s.bookingLookupError(bookingID, err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Booking cancellation rejected",
			"id", bookingID,
			"requester_id", requesterID,
			"error", err,
		)
		return nil, asAppError(err, "Failed to cancel booking")
	}

	cancelled.Status = model.BookingCancelled
	s.log.Info("Booking cancelled successfully",
		"id", cancelled.ID,
		"resource_id", cancelled.ResourceID,
		"requester_id", requesterID,
	)
	s.publish(ctx, events.EventBookingCancelled, cancelled)
	return cancelled, nil
}

func (s *bookingService) IsAvailable(ctx context.Context, resourceID string, iv model.Interval) bool {
	overlap, err := s.repo.HasOverlap(ctx, resourceID, iv)
	if err != nil {
		s.log.Error("Failed to check availability", "resource_id", resourceID, "error", err)
		return false
	}
	return !overlap
}

// CheckAvailability is IsAvailable with argument checking, for callers
// outside the process.
func (s *bookingService) CheckAvailability(ctx context.Context, resourceID string, iv model.Interval) (bool, error) {
	if !iv.Valid() {
		return false, invalidIntervalError(iv)
	}
	if !s.resourceExists(resourceID) {
		return false, apperrors.NotFoundWithID("Resource", resourceID).WithCause(bookingserrors.ErrResourceNotFound)
	}
	return s.IsAvailable(ctx, resourceID, iv), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.bookingLookupError(id, err)
	}
	return booking, nil
}

func (s *bookingService) BookingsFor(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	if requesterID == "" {
		return nil, apperrors.InvalidInput("Requester ID cannot be empty")
	}

	bookings, err := s.repo.FindByRequester(ctx, requesterID)
	if err != nil {
		s.log.Error("Failed to list bookings", "requester_id", requesterID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	s.log.Debug("Requester bookings listed", "requester_id", requesterID, "count", len(bookings))
	return bookings, nil
}

func (s *bookingService) BookingsOn(ctx context.Context, resourceID string) ([]*model.Booking, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	bookings, err := s.repo.FindByResource(ctx, resourceID)
	if err != nil {
		s.log.Error("Failed to list bookings", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	s.log.Debug("Resource bookings listed", "resource_id", resourceID, "count", len(bookings))
	return bookings, nil
}

func (s *bookingService) BusinessHours() model.BusinessHours {
	return s.hours
}

func (s *bookingService) Flush() {
	s.inflight.Wait()
}

// --- Helpers ---

func (s *bookingService) validate(req *model.BookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) checkRules(iv model.Interval) error {
	if !iv.Valid() {
		return invalidIntervalError(iv)
	}
	if iv.Start.Before(s.clock.Now()) {
		return apperrors.Validation("Cannot book in the past", map[string]any{
			"start": iv.Start,
		}).WithCause(bookingserrors.ErrPastBooking)
	}
	if !s.hours.Contains(iv) {
		return apperrors.Validation(fmt.Sprintf("Bookings must fall within business hours (%s)", s.hours), map[string]any{
			"business_hours": s.hours.String(),
		}).WithCause(bookingserrors.ErrOutsideBusinessHours)
	}
	return nil
}

func (s *bookingService) bookingLookupError(id string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id).WithCause(bookingserrors.ErrNotFound)
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

// publish hands the event to the publisher off the request path. The commit
// already happened, so a delivery failure is only logged.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := events.Event{
		Type:       eventType,
		OccurredAt: s.clock.Now(),
		Booking:    booking.Clone(),
	}
	detached := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		pubCtx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.log.Error("Failed to publish booking event",
				"event_type", eventType,
				"booking_id", event.Booking.ID,
				"error", err,
			)
		}
	}()
}

func invalidIntervalError(iv model.Interval) error {
	return apperrors.Validation("Start must be before end", map[string]any{
		"start": iv.Start,
		"end":   iv.End,
	}).WithCause(bookingserrors.ErrInvalidInterval)
}

func asAppError(err error, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout(message + ": request deadline reached").WithCause(err)
	default:
		return apperrors.Internal(message, err)
	}
}

func newBookingID() string {
	return "B" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
