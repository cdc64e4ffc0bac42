package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type accountService interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.AccountWithACMA, error)
}

// AccountHandler wires the accounts directory to HTTP endpoints.
type AccountHandler struct {
	service accountService
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(service accountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List godoc
// @Summary Search customer accounts
// @Tags Accounts
// @Produce json
// @Param query query string false "Account or account manager name search"
// @Param acma query string false "Account manager ID"
// @Success 200 {object} response.Envelope
// @Router /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.service.List(c.Request.Context(), models.AccountFilter{
		Query:            c.Query("query"),
		AccountManagerID: c.Query("acma"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, nil)
}
