package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/response"
)

type userService interface {
	Provision(ctx context.Context, email, password string) (*models.User, error)
}

// UserHandler wires user provisioning to HTTP endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

type provisionUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Provision godoc
// @Summary Provision a user account from the employee directory
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body provisionUserRequest true "User"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Provision(c *gin.Context) {
	var req provisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user payload"))
		return
	}
	user, err := h.service.Provision(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, models.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		PictureURL: user.PictureURL,
		Role:       user.Role,
	})
}
