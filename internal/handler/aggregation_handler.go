package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type aggregationService interface {
	Managers(ctx context.Context, filter models.AggregationFilter, page models.PageRequest, sortKey models.AggregationSort) (*models.PaginatedManagersAggregation, bool, error)
}

// AggregationHandler wires the managers dashboard aggregation to HTTP.
type AggregationHandler struct {
	service aggregationService
}

// NewAggregationHandler constructs the handler.
func NewAggregationHandler(service aggregationService) *AggregationHandler {
	return &AggregationHandler{service: service}
}

// Managers godoc
// @Summary Per-manager feedback aggregation
// @Tags Employees
// @Produce json
// @Param q query string false "Manager name search"
// @Param startup query []string false "Startup allowlist"
// @Param manager query []string false "Manager allowlist (admin only)"
// @Param start query string false "Period start (YYYY-MM-DD)"
// @Param end query string false "Period end (YYYY-MM-DD)"
// @Param page query int false "Page, defaults to 1"
// @Param perPage query int false "Page size, defaults to 10"
// @Param sort query string false "Sort key" Enums(name, -name, average, -average, count, -count, date, -date)
// @Success 200 {object} response.Envelope
// @Router /employees/managers/aggregation [get]
func (h *AggregationHandler) Managers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.AggregationFilter{
		Query:    c.Query("q"),
		Startups: c.QueryArray("startup"),
		Managers: c.QueryArray("manager"),
	}
	var parseErr error
	if filter.Start, parseErr = optionalDate(c.Query("start")); parseErr != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start date, expected YYYY-MM-DD"))
		return
	}
	if filter.End, parseErr = optionalDate(c.Query("end")); parseErr != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end date, expected YYYY-MM-DD"))
		return
	}

	// Managers only ever see their own team, whatever the query says.
	if claims.Role == models.RoleManager {
		filter.Managers = []string{claims.UserID}
	}

	page := models.PageRequest{
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "perPage", 10),
	}
	sortKey := models.AggregationSort(c.DefaultQuery("sort", string(models.AggregationSortNameAsc)))

	result, cacheHit, err := h.service.Managers(c.Request.Context(), filter, page, sortKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	if cacheHit {
		c.Header("X-Cache", "HIT")
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
