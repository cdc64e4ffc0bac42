package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type userRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type userEmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// UserService provisions application users from the employee directory.
type UserService struct {
	users     userRepository
	employees userEmployeeRepository
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, employees userEmployeeRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, employees: employees, logger: logger}
}

// RoleFromPosition resolves the role granted to an employee position.
func RoleFromPosition(position string) models.UserRole {
	for _, p := range models.AdminPositions {
		if p == position {
			return models.RoleAdmin
		}
	}
	return models.RoleManager
}

// Provision creates the user account matching an employee. The role comes
// from the employee's position. Provisioning an existing user is a no-op
// returning the current record.
func (s *UserService) Provision(ctx context.Context, email, password string) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	employee, err := s.employees.GetByID(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no employee matches this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch employee")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           employee.ID,
		Email:        employee.ID,
		Name:         employee.Name,
		PictureURL:   employee.PictureURL,
		Role:         RoleFromPosition(employee.Position),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user provisioned", zap.String("user", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}
