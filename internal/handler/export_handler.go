package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/internal/service"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type exportService interface {
	EmployeesExport(ctx context.Context, filter models.EmployeesExportFilter, format string) (*service.ExportFile, error)
	FeedbacksExport(ctx context.Context, start, end time.Time) (*service.ExportFile, error)
}

// ExportHandler wires the CSV and PDF exports to HTTP endpoints.
type ExportHandler struct {
	service   exportService
	validator *validator.Validate
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService, validate *validator.Validate) *ExportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportHandler{service: service, validator: validate}
}

// Employees godoc
// @Summary Export employee NPS averages over a period
// @Tags Exports
// @Accept json
// @Produce text/csv
// @Param payload body models.ExportRequest true "Export parameters"
// @Success 200 {string} string "csv or pdf content"
// @Router /employees/export [post]
func (h *ExportHandler) Employees(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req, start, end, ok := h.parseRequest(c)
	if !ok {
		return
	}

	exportType := models.EmployeesExportType(req.Type)
	// Managers only ever export their own team.
	if claims.Role == models.RoleManager {
		exportType = models.ExportTypeManagees
	}

	file, err := h.service.EmployeesExport(c.Request.Context(), models.EmployeesExportFilter{
		UserID: claims.UserID,
		Type:   exportType,
		Start:  start,
		End:    end,
	}, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Feedbacks godoc
// @Summary Export every feedback of a period
// @Tags Exports
// @Accept json
// @Produce text/csv
// @Param payload body models.ExportRequest true "Export parameters"
// @Success 200 {string} string "csv content"
// @Router /feedbacks/export [post]
func (h *ExportHandler) Feedbacks(c *gin.Context) {
	_, start, end, ok := h.parseRequest(c)
	if !ok {
		return
	}
	file, err := h.service.FeedbacksExport(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func (h *ExportHandler) parseRequest(c *gin.Context) (models.ExportRequest, time.Time, time.Time, bool) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export payload"))
		return req, time.Time{}, time.Time{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return req, time.Time{}, time.Time{}, false
	}
	start, _ := time.ParseInLocation("2006-01-02", req.Start, time.UTC)
	end, _ := time.ParseInLocation("2006-01-02", req.End, time.UTC)
	return req, start, end, true
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
