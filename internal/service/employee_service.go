package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// EmployeeService exposes the employee directory.
type EmployeeService struct {
	repo   employeeRepository
	logger *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, logger: logger}
}

// List searches the directory. Free-text queries shorter than three
// characters are ignored to keep the search selective.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	if len(filter.Query) < 3 {
		filter.Query = ""
	}
	employees, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, nil
}

// Get fetches a single employee by email.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "the employee does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch employee")
	}
	return employee, nil
}
