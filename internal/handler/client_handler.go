package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type clientService interface {
	List(ctx context.Context) ([]models.FullClient, error)
	Create(ctx context.Context, payload models.ClientPayload) (*models.FullClient, error)
}

// ClientHandler wires client management to HTTP endpoints.
type ClientHandler struct {
	service clientService
}

// NewClientHandler constructs the handler.
func NewClientHandler(service clientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List godoc
// @Summary List clients with their accounts
// @Tags Clients
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, nil)
}

// Create godoc
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body models.ClientPayload true "Client"
// @Success 201 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var payload models.ClientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid client payload"))
		return
	}
	client, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}
