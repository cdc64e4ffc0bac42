package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type feedbackService interface {
	List(ctx context.Context, filter models.FeedbackFilter, page *models.PageRequest, sortKey models.FeedbackSort) (*models.PaginatedFeedbacks, error)
	Get(ctx context.Context, id string) (*models.FullFeedback, error)
	Index(ctx context.Context, feedbackID, employeeID string) (int, error)
	Create(ctx context.Context, payload models.FeedbackPayload, userID string) (*models.Feedback, error)
	Update(ctx context.Context, id string, payload models.FeedbackPayload, userID string) error
	Delete(ctx context.Context, id string) error
}

// FeedbackHandler wires the feedback lifecycle to HTTP endpoints.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// List godoc
// @Summary List feedbacks
// @Tags Feedbacks
// @Produce json
// @Param q query string false "Employee name or email search"
// @Param manager query []string false "Manager allowlist"
// @Param startup query []string false "Startup allowlist"
// @Param start query string false "Date from (YYYY-MM-DD)"
// @Param end query string false "Date until (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param perPage query int false "Page size"
// @Param sort query string false "Sort key" Enums(employee, manager, client, account, score, date, -employee, -manager, -client, -account, -score, -date)
// @Success 200 {object} response.Envelope
// @Router /feedbacks [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.FeedbackFilter{
		Employee: c.Query("q"),
		Managers: c.QueryArray("manager"),
		Startups: c.QueryArray("startup"),
	}
	var parseErr error
	if filter.DateFrom, parseErr = optionalDate(c.Query("start")); parseErr != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start date, expected YYYY-MM-DD"))
		return
	}
	if filter.DateUntil, parseErr = optionalDate(c.Query("end")); parseErr != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end date, expected YYYY-MM-DD"))
		return
	}

	// Managers always get their own team added to the scope.
	if claims.Role == models.RoleManager {
		filter.Managers = append(filter.Managers, claims.UserID)
	}

	var page *models.PageRequest
	if c.Query("page") != "" || c.Query("perPage") != "" {
		page = &models.PageRequest{
			Page:    intQuery(c, "page", 1),
			PerPage: intQuery(c, "perPage", 10),
		}
	}
	sortKey := models.FeedbackSort(c.Query("sort"))

	result, err := h.service.List(c.Request.Context(), filter, page, sortKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Fetch a feedback with its chronological rank
// @Tags Feedbacks
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} response.Envelope
// @Router /feedbacks/{id} [get]
func (h *FeedbackHandler) Get(c *gin.Context) {
	feedback, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	index, err := h.service.Index(c.Request.Context(), feedback.ID, feedback.EmployeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"feedback": feedback, "index": index}, nil)
}

// Create godoc
// @Summary Record a new feedback
// @Tags Feedbacks
// @Accept json
// @Produce json
// @Param payload body models.FeedbackPayload true "Feedback"
// @Success 201 {object} response.Envelope
// @Router /feedbacks [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload models.FeedbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid feedback payload"))
		return
	}
	feedback, err := h.service.Create(c.Request.Context(), payload, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// Update godoc
// @Summary Rewrite the answers of a feedback
// @Tags Feedbacks
// @Accept json
// @Param id path string true "Feedback ID"
// @Param payload body models.FeedbackPayload true "Feedback"
// @Success 204
// @Router /feedbacks/{id} [put]
func (h *FeedbackHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload models.FeedbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid feedback payload"))
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), payload, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Archive and delete a feedback
// @Tags Feedbacks
// @Param id path string true "Feedback ID"
// @Success 204
// @Router /feedbacks/{id} [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
