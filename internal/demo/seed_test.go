package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/internal/resources/repository"
	"roombook/internal/resources/service"
	"roombook/internal/resources/validator"
	"roombook/pkg/clock"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRegistrar struct{}

func (failingRegistrar) Register(context.Context, *model.ResourceInput) (*model.Resource, error) {
	return nil, errors.New("catalog unavailable")
}

func TestSeed(t *testing.T) {
	log := logger.Discard()
	svc := service.NewResourceService(
		repository.NewMemoryResourceRepository(),
		validator.NewResourceValidator(log),
		clock.NewManual(time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local)),
		log,
	)

	seeded, err := Seed(context.Background(), svc, log)

	require.NoError(t, err)
	require.Len(t, seeded, 3)
	assert.Equal(t, "Orchid", seeded[0].DisplayName)
	assert.Equal(t, "Lotus", seeded[1].DisplayName)
	assert.Equal(t, "Iris", seeded[2].DisplayName)

	matching, err := svc.FindMatching(context.Background(), 5, []string{"projector"})
	require.NoError(t, err)
	require.Len(t, matching, 2)
	assert.Equal(t, seeded[0].ID, matching[0].ID)
	assert.Equal(t, seeded[1].ID, matching[1].ID)
}

func TestSeed_PropagatesErrors(t *testing.T) {
	_, err := Seed(context.Background(), failingRegistrar{}, logger.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Orchid")
}

func TestRequesters(t *testing.T) {
	require.Len(t, Requesters, 2)
	assert.Equal(t, "U1", Requesters[0].ID)
	assert.Equal(t, "Bob", Requesters[1].DisplayName)
}
