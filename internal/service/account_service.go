package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type accountRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.AccountWithACMA, error)
}

// AccountService exposes the customer accounts directory.
type AccountService struct {
	repo   accountRepository
	logger *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, logger: logger}
}

// List searches accounts by account or account-manager name.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.AccountWithACMA, error) {
	accounts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	return accounts, nil
}
