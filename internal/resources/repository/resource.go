package repository

import (
	"context"
	"sync"

	resourceserrors "roombook/internal/resources/errors"
	"roombook/pkg/model"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context) ([]*model.Resource, error)
	Exists(id string) bool
	Count(ctx context.Context) (int, error)
}

// memoryResourceRepository keeps resources in registration order. Stored
// values are never handed out; every read returns a copy.
type memoryResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*model.Resource
	order     []string
}

func NewMemoryResourceRepository() ResourceRepository {
	return &memoryResourceRepository{
		resources: make(map[string]*model.Resource),
	}
}

func (r *memoryResourceRepository) Create(_ context.Context, resource *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[resource.ID]; ok {
		return ErrDuplicateID
	}
	r.resources[resource.ID] = resource.Clone()
	r.order = append(r.order, resource.ID)
	return nil
}

func (r *memoryResourceRepository) FindByID(_ context.Context, id string) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[id]
	if !ok {
		return nil, resourceserrors.ErrNotFound
	}
	return resource.Clone(), nil
}

func (r *memoryResourceRepository) FindAll(_ context.Context) ([]*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Resource, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.resources[id].Clone())
	}
	return out, nil
}

func (r *memoryResourceRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.resources[id]
	return ok
}

func (r *memoryResourceRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}
