package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/model"
)

// Tx is the view of the store a transaction gets while it holds the lock of
// one resource. Values passed in and out are copies.
type Tx interface {
	// FindOverlapping returns the earliest accepted booking on the
	// transaction's resource that overlaps iv, or nil.
	FindOverlapping(iv model.Interval) *model.Booking
	FindByID(id string) (*model.Booking, error)
	Insert(booking *model.Booking) error
	Delete(id string) (*model.Booking, error)
}

type TransactionFunc func(tx Tx) error

type BookingRepository interface {
	// ExecuteTransaction runs fn while holding the lock of resourceID. Two
	// transactions on the same resource never interleave.
	ExecuteTransaction(ctx context.Context, resourceID string, fn TransactionFunc) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByResource(ctx context.Context, resourceID string) ([]*model.Booking, error)
	FindByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error)
	HasOverlap(ctx context.Context, resourceID string, iv model.Interval) (bool, error)
	Count(ctx context.Context) (int, error)
}

// memoryBookingRepository holds the canonical booking set and two indexes
// derived from it. All three change together under mu, so readers see a
// booking in every view or in none.
type memoryBookingRepository struct {
	mu          sync.RWMutex
	bookings    map[string]*model.Booking
	byResource  map[string][]string
	byRequester map[string][]string

	locks *ResourceLockSet
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		bookings:    make(map[string]*model.Booking),
		byResource:  make(map[string][]string),
		byRequester: make(map[string][]string),
		locks:       NewResourceLockSet(),
	}
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, resourceID string, fn TransactionFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction not started: %w", err)
	}

	release := r.locks.Acquire(resourceID)
	defer release()

	tx := &memoryTx{repo: r, resourceID: resourceID}
	defer func() { tx.closed = true }()

	return fn(tx)
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByIDLocked(id)
}

func (r *memoryBookingRepository) FindByResource(_ context.Context, resourceID string) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byResource[resourceID]), nil
}

func (r *memoryBookingRepository) FindByRequester(_ context.Context, requesterID string) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byRequester[requesterID]), nil
}

func (r *memoryBookingRepository) HasOverlap(_ context.Context, resourceID string, iv model.Interval) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findOverlappingLocked(resourceID, iv) != nil, nil
}

func (r *memoryBookingRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings), nil
}

func (r *memoryBookingRepository) findByIDLocked(id string) (*model.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *memoryBookingRepository) collectLocked(ids []string) []*model.Booking {
	out := make([]*model.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.bookings[id].Clone())
	}
	return out
}

func (r *memoryBookingRepository) findOverlappingLocked(resourceID string, iv model.Interval) *model.Booking {
	var first *model.Booking
	for _, id := range r.byResource[resourceID] {
		b := r.bookings[id]
		if !b.Interval().Overlaps(iv) {
			continue
		}
		if first == nil || b.Start.Before(first.Start) {
			first = b
		}
	}
	if first == nil {
		return nil
	}
	return first.Clone()
}

func (r *memoryBookingRepository) insert(b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; ok {
		return ErrDuplicateID
	}
	r.bookings[b.ID] = b.Clone()
	r.byResource[b.ResourceID] = append(r.byResource[b.ResourceID], b.ID)
	r.byRequester[b.RequesterID] = append(r.byRequester[b.RequesterID], b.ID)
	return nil
}

func (r *memoryBookingRepository) delete(id, resourceID string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.ResourceID != resourceID {
		return nil, ErrWrongResource
	}

	delete(r.bookings, id)
	r.byResource[b.ResourceID] = removeID(r.byResource[b.ResourceID], id)
	if len(r.byResource[b.ResourceID]) == 0 {
		delete(r.byResource, b.ResourceID)
	}
	r.byRequester[b.RequesterID] = removeID(r.byRequester[b.RequesterID], id)
	if len(r.byRequester[b.RequesterID]) == 0 {
		delete(r.byRequester, b.RequesterID)
	}
	return b, nil
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}

type memoryTx struct {
	repo       *memoryBookingRepository
	resourceID string
	closed     bool
}

// FindOverlapping panics on a closed transaction; nil means no conflict.
func (tx *memoryTx) FindOverlapping(iv model.Interval) *model.Booking {
	if tx.closed {
		panic(ErrTxClosed)
	}
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()
	return tx.repo.findOverlappingLocked(tx.resourceID, iv)
}

func (tx *memoryTx) FindByID(id string) (*model.Booking, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()
	return tx.repo.findByIDLocked(id)
}

func (tx *memoryTx) Insert(booking *model.Booking) error {
	if tx.closed {
		return ErrTxClosed
	}
	if booking.ResourceID != tx.resourceID {
		return ErrWrongResource
	}
	return tx.repo.insert(booking)
}

func (tx *memoryTx) Delete(id string) (*model.Booking, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	return tx.repo.delete(id, tx.resourceID)
}
