package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type employeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
}

// EmployeeHandler wires the employee directory to HTTP endpoints.
type EmployeeHandler struct {
	service employeeService
}

// NewEmployeeHandler constructs the handler.
func NewEmployeeHandler(service employeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// List godoc
// @Summary Search the employee directory
// @Tags Employees
// @Produce json
// @Param query query string false "Name or email search, min 3 characters"
// @Param type query string false "Employee type" Enums(manager, ACMA)
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	filter := models.EmployeeFilter{
		Query: c.Query("query"),
		Type:  models.EmployeeType(c.Query("type")),
	}
	employees, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, nil)
}
