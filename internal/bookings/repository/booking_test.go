package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2030, 1, 7, 0, 0, 0, 0, time.Local)

func booking(id, resourceID, requesterID string, fromHour, toHour int) *model.Booking {
	return &model.Booking{
		ID:          id,
		ResourceID:  resourceID,
		RequesterID: requesterID,
		Start:       day.Add(time.Duration(fromHour) * time.Hour),
		End:         day.Add(time.Duration(toHour) * time.Hour),
		Status:      model.BookingActive,
	}
}

func hours(from, to int) model.Interval {
	return model.MustInterval(day.Add(time.Duration(from)*time.Hour), day.Add(time.Duration(to)*time.Hour))
}

func insert(t *testing.T, repo BookingRepository, b *model.Booking) {
	t.Helper()
	err := repo.ExecuteTransaction(context.Background(), b.ResourceID, func(tx Tx) error {
		return tx.Insert(b)
	})
	require.NoError(t, err)
}

func ids(bookings []*model.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestInsertMaintainsIndexes(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	insert(t, repo, booking("B1", "R1", "U1", 9, 10))
	insert(t, repo, booking("B2", "R2", "U1", 9, 10))
	insert(t, repo, booking("B3", "R1", "U2", 11, 12))

	onR1, err := repo.FindByResource(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B3"}, ids(onR1))

	forU1, err := repo.FindByRequester(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B2"}, ids(forU1))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeleteMaintainsIndexes(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	insert(t, repo, booking("B1", "R1", "U1", 9, 10))
	insert(t, repo, booking("B2", "R1", "U1", 10, 11))

	var removed *model.Booking
	err := repo.ExecuteTransaction(ctx, "R1", func(tx Tx) error {
		var err error
		removed, err = tx.Delete("B1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "B1", removed.ID)

	_, err = repo.FindByID(ctx, "B1")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)

	onR1, _ := repo.FindByResource(ctx, "R1")
	assert.Equal(t, []string{"B2"}, ids(onR1))
	forU1, _ := repo.FindByRequester(ctx, "U1")
	assert.Equal(t, []string{"B2"}, ids(forU1))
}

func TestTxGuards(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	insert(t, repo, booking("B1", "R1", "U1", 9, 10))

	err := repo.ExecuteTransaction(ctx, "R2", func(tx Tx) error {
		return tx.Insert(booking("B2", "R1", "U1", 11, 12))
	})
	assert.ErrorIs(t, err, ErrWrongResource)

	err = repo.ExecuteTransaction(ctx, "R2", func(tx Tx) error {
		_, err := tx.Delete("B1")
		return err
	})
	assert.ErrorIs(t, err, ErrWrongResource)

	err = repo.ExecuteTransaction(ctx, "R1", func(tx Tx) error {
		return tx.Insert(booking("B1", "R1", "U2", 12, 13))
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	var leaked Tx
	require.NoError(t, repo.ExecuteTransaction(ctx, "R1", func(tx Tx) error {
		leaked = tx
		return nil
	}))
	assert.ErrorIs(t, leaked.Insert(booking("B9", "R1", "U1", 14, 15)), ErrTxClosed)
	_, err = leaked.Delete("B1")
	assert.ErrorIs(t, err, ErrTxClosed)
	_, err = leaked.FindByID("B1")
	assert.ErrorIs(t, err, ErrTxClosed)
	assert.PanicsWithValue(t, ErrTxClosed, func() {
		leaked.FindOverlapping(booking("B9", "R1", "U1", 9, 10).Interval())
	})
}

func TestExecuteTransaction_CancelledContext(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.ExecuteTransaction(ctx, "R1", func(Tx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestExecuteTransaction_PropagatesError(t *testing.T) {
	repo := NewMemoryBookingRepository()
	boom := errors.New("boom")

	err := repo.ExecuteTransaction(context.Background(), "R1", func(Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestFindOverlapping(t *testing.T) {
	repo := NewMemoryBookingRepository()
	insert(t, repo, booking("B2", "R1", "U1", 13, 15))
	insert(t, repo, booking("B1", "R1", "U1", 9, 11))
	insert(t, repo, booking("B3", "R2", "U1", 9, 18))

	tests := []struct {
		name string
		iv   model.Interval
		want string
	}{
		{name: "free gap", iv: hours(11, 13), want: ""},
		{name: "touching end is free", iv: hours(8, 9), want: ""},
		{name: "inside first", iv: hours(10, 11), want: "B1"},
		{name: "spanning both reports earliest", iv: hours(10, 14), want: "B1"},
		{name: "inside second", iv: hours(14, 16), want: "B2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Booking
			require.NoError(t, repo.ExecuteTransaction(context.Background(), "R1", func(tx Tx) error {
				got = tx.FindOverlapping(tt.iv)
				return nil
			}))

			overlap, err := repo.HasOverlap(context.Background(), "R1", tt.iv)
			require.NoError(t, err)

			if tt.want == "" {
				assert.Nil(t, got)
				assert.False(t, overlap)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
			assert.True(t, overlap)
		})
	}
}

func TestReadsReturnCopies(t *testing.T) {
	repo := NewMemoryBookingRepository()
	insert(t, repo, booking("B1", "R1", "U1", 9, 10))

	got, err := repo.FindByID(context.Background(), "B1")
	require.NoError(t, err)
	got.Status = model.BookingCancelled

	again, _ := repo.FindByID(context.Background(), "B1")
	assert.Equal(t, model.BookingActive, again.Status)
}

func TestIndexesStayConsistentUnderConcurrency(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	const resources, perResource = 4, 25

	var wg sync.WaitGroup
	for r := range resources {
		for i := range perResource {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resourceID := fmt.Sprintf("R%d", r)
				id := fmt.Sprintf("B%d-%d", r, i)
				_ = repo.ExecuteTransaction(ctx, resourceID, func(tx Tx) error {
					if err := tx.Insert(booking(id, resourceID, fmt.Sprintf("U%d", i%3), 8, 9)); err != nil {
						return err
					}
					if i%2 == 0 {
						_, err := tx.Delete(id)
						return err
					}
					return nil
				})
			}()
		}
	}
	wg.Wait()

	total := 0
	for r := range resources {
		on, err := repo.FindByResource(ctx, fmt.Sprintf("R%d", r))
		require.NoError(t, err)
		total += len(on)
	}
	requesterTotal := 0
	for u := range 3 {
		forU, err := repo.FindByRequester(ctx, fmt.Sprintf("U%d", u))
		require.NoError(t, err)
		requesterTotal += len(forU)
	}
	count, _ := repo.Count(ctx)

	assert.Equal(t, resources*(perResource/2), count)
	assert.Equal(t, count, total)
	assert.Equal(t, count, requesterTotal)
}
