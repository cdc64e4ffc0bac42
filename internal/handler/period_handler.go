package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/internal/service"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type periodService interface {
	FilterOptions(ctx context.Context, query service.PeriodOptionsQuery) ([]models.PeriodOption, error)
}

// PeriodHandler wires the period filter options to HTTP endpoints.
type PeriodHandler struct {
	service periodService
}

// NewPeriodHandler constructs the handler.
func NewPeriodHandler(service periodService) *PeriodHandler {
	return &PeriodHandler{service: service}
}

// Options godoc
// @Summary Period filter options covering every recorded feedback
// @Tags Filters
// @Produce json
// @Param manager query string false "Restrict to a manager's team (admin only)"
// @Param default query string false "Pre-selected option key"
// @Param until query string false "Range end (YYYY-MM-DD), defaults to now"
// @Success 200 {object} response.Envelope
// @Router /filters/periods [get]
func (h *PeriodHandler) Options(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	query := service.PeriodOptionsQuery{
		Manager: c.Query("manager"),
		Default: c.Query("default"),
	}
	until, err := optionalDate(c.Query("until"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid until date, expected YYYY-MM-DD"))
		return
	}
	query.Until = until

	// Managers only ever see their own team's range.
	if claims.Role == models.RoleManager {
		query.Manager = claims.UserID
	}

	options, err := h.service.FilterOptions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
