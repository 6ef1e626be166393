package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	resourceserrors "roombook/internal/resources/errors"
	"roombook/internal/resources/repository"
	"roombook/internal/resources/validator"
	"roombook/pkg/clock"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"github.com/google/uuid"
)

const maxIDAttempts = 5

type ResourceService interface {
	Register(ctx context.Context, input *model.ResourceInput) (*model.Resource, error)
	Get(ctx context.Context, id string) (*model.Resource, error)
	ListAll(ctx context.Context) ([]*model.Resource, error)
	FindMatching(ctx context.Context, minCapacity int, equipment []string) ([]*model.Resource, error)
	Exists(id string) bool
}

type resourceService struct {
	repo      repository.ResourceRepository
	validator *validator.ResourceValidator
	clock     clock.Clock
	log       *logger.Logger
}

func NewResourceService(
	repo repository.ResourceRepository,
	validator *validator.ResourceValidator,
	clk clock.Clock,
	log *logger.Logger,
) ResourceService {
	return &resourceService{
		repo:      repo,
		validator: validator,
		clock:     clk,
		log:       log,
	}
}

func (s *resourceService) Register(ctx context.Context, input *model.ResourceInput) (*model.Resource, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("Resource input cannot be empty")
	}
	if input.Capacity <= 0 {
		s.log.Warn("Resource registration rejected", "display_name", input.DisplayName, "capacity", input.Capacity)
		return nil, apperrors.InvalidInput("Capacity must be a positive integer").WithCause(resourceserrors.ErrInvalidCapacity)
	}

	sanitizer.SanitizeResourceInput(input)
	if err := s.validator.Validate(input); err != nil {
		s.log.Warn("Resource validation failed", "error", err)
		return nil, apperrors.Validation("Resource validation failed", map[string]any{"error": err.Error()})
	}

	resource := &model.Resource{
		DisplayName: input.DisplayName,
		Capacity:    input.Capacity,
		Equipment:   slices.Clone(input.Equipment),
		Location:    input.Location,
		CreatedAt:   s.clock.Now(),
	}

	var err error
	for range maxIDAttempts {
		resource.ID = newResourceID()
		if err = s.repo.Create(ctx, resource); !errors.Is(err, repository.ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		s.log.Error("Failed to register resource", "display_name", resource.DisplayName, "error", err)
		return nil, apperrors.Internal("Failed to register resource", err)
	}

	s.log.Info("Resource registered successfully",
		"id", resource.ID,
		"display_name", resource.DisplayName,
		"capacity", resource.Capacity,
		"equipment", resource.Equipment,
	)
	return resource, nil
}

func (s *resourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id).WithCause(resourceserrors.ErrNotFound)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

func (s *resourceService) ListAll(ctx context.Context) ([]*model.Resource, error) {
	resources, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list resources", "error", err)
		return nil, apperrors.Internal("Failed to retrieve resources", err)
	}
	return resources, nil
}

// FindMatching returns resources with at least minCapacity seats carrying every
// required tag, smallest first. Equal capacities keep registration order.
func (s *resourceService) FindMatching(ctx context.Context, minCapacity int, equipment []string) ([]*model.Resource, error) {
	if minCapacity < 0 {
		return nil, apperrors.InvalidInput("Minimum capacity cannot be negative").WithCause(resourceserrors.ErrInvalidMinCapacity)
	}
	required := sanitizer.NormalizeEquipment(equipment)

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list resources", "error", err)
		return nil, apperrors.Internal("Failed to retrieve resources", err)
	}

	matching := make([]*model.Resource, 0, len(all))
	for _, r := range all {
		if r.Capacity >= minCapacity && r.HasEquipment(required) {
			matching = append(matching, r)
		}
	}
	slices.SortStableFunc(matching, func(a, b *model.Resource) int {
		return cmp.Compare(a.Capacity, b.Capacity)
	})

	s.log.Debug("Resource match completed",
		"min_capacity", minCapacity,
		"equipment", required,
		"count", len(matching),
	)
	return matching, nil
}

func (s *resourceService) Exists(id string) bool {
	return s.repo.Exists(id)
}

func newResourceID() string {
	return "R" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
