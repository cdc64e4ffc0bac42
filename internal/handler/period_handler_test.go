package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/internal/service"
)

type fakePeriodSrv struct {
	options   []models.PeriodOption
	err       error
	lastQuery service.PeriodOptionsQuery
}

func (f *fakePeriodSrv) FilterOptions(_ context.Context, query service.PeriodOptionsQuery) ([]models.PeriodOption, error) {
	f.lastQuery = query
	return f.options, f.err
}

func TestPeriodHandlerOptions(t *testing.T) {
	srv := &fakePeriodSrv{options: []models.PeriodOption{{Key: "s1_2023"}}}
	handler := NewPeriodHandler(srv)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleAdmin, "admin@x.co")
	c.Request = httptest.NewRequest(http.MethodGet, "/filters/periods?manager=boss@x.co&default=year_2022&until=2023-04-15", nil)

	handler.Options(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "boss@x.co", srv.lastQuery.Manager)
	assert.Equal(t, "year_2022", srv.lastQuery.Default)
	require.NotNil(t, srv.lastQuery.Until)
	assert.Equal(t, 15, srv.lastQuery.Until.Day())
}

func TestPeriodHandlerOptionsManagerScopedToOwnTeam(t *testing.T) {
	srv := &fakePeriodSrv{}
	handler := NewPeriodHandler(srv)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleManager, "me@x.co")
	c.Request = httptest.NewRequest(http.MethodGet, "/filters/periods?manager=other@x.co", nil)

	handler.Options(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "me@x.co", srv.lastQuery.Manager)
}

func TestPeriodHandlerOptionsRejectsInvalidUntil(t *testing.T) {
	handler := NewPeriodHandler(&fakePeriodSrv{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleAdmin, "admin@x.co")
	c.Request = httptest.NewRequest(http.MethodGet, "/filters/periods?until=15/04/2023", nil)

	handler.Options(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
