package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"roombook/internal/search/service"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	gotInterval    model.Interval
	gotMinCapacity int
	gotEquipment   []string
	result         []*model.Resource
	err            error
}

func (s *stubSearch) Search(_ context.Context, iv model.Interval, minCapacity int, equipment []string) ([]*model.Resource, error) {
	s.gotInterval = iv
	s.gotMinCapacity = minCapacity
	s.gotEquipment = equipment
	return s.result, s.err
}

var _ service.SearchService = (*stubSearch)(nil)

func serve(stub *stubSearch, target string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewSearchHandler(stub, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAvailable_PassesQueryThrough(t *testing.T) {
	stub := &stubSearch{result: []*model.Resource{{ID: "Rb", Capacity: 12}}}

	rec := serve(stub, "/api/v1/resources/available?start=2030-01-08+10:00&end=2030-01-08+11:00&min_capacity=5&equipment=projector,+vc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, stub.gotMinCapacity)
	assert.Equal(t, []string{"projector", "vc"}, stub.gotEquipment)
	assert.Equal(t, 10, stub.gotInterval.Start.Hour())
	assert.Equal(t, 11, stub.gotInterval.End.Hour())

	var resp struct {
		Data       []model.Resource `json:"data"`
		TotalCount int              `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "Rb", resp.Data[0].ID)
}

func TestAvailable_EmptyResultIsArray(t *testing.T) {
	rec := serve(&stubSearch{}, "/api/v1/resources/available?start=2030-01-08+10:00&end=2030-01-08+11:00")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total_count":0}`, rec.Body.String())
}

func TestAvailable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{
			name:   "missing end",
			target: "/api/v1/resources/available?start=2030-01-08+10:00",
			status: http.StatusBadRequest,
		},
		{
			name:   "bad min capacity",
			target: "/api/v1/resources/available?start=2030-01-08+10:00&end=2030-01-08+11:00&min_capacity=lots",
			status: http.StatusBadRequest,
		},
		{
			name:   "service rejects interval",
			target: "/api/v1/resources/available?start=2030-01-08+11:00&end=2030-01-08+10:00",
			err:    apperrors.Validation("Start must be before end", nil),
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubSearch{err: tt.err}, tt.target)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
