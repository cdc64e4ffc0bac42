package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type clientRepository interface {
	List(ctx context.Context) ([]models.FullClient, error)
	GetByID(ctx context.Context, id string) (*models.FullClient, error)
	ExistsForAccount(ctx context.Context, accountID, name, email string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
}

type clientAccountCreator interface {
	Create(ctx context.Context, account *models.Account) error
}

// ClientService manages client records.
type ClientService struct {
	clients   clientRepository
	accounts  clientAccountCreator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(clients clientRepository, accounts clientAccountCreator, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClientService{clients: clients, accounts: accounts, validator: validate, logger: logger}
}

// List returns every client with its account relations.
func (s *ClientService) List(ctx context.Context) ([]models.FullClient, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, nil
}

// Create records a new client, either attached to an existing account or to
// an account created inline. Exactly one of AccountID and AccountData must
// be set. Attaching to an existing account is rejected when the name or
// email is already taken there.
func (s *ClientService) Create(ctx context.Context, payload models.ClientPayload) (*models.FullClient, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	if (payload.AccountID == "") == (payload.AccountData == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exactly one of accountId and accountData is required")
	}

	client := &models.Client{Name: payload.Name}
	if strings.TrimSpace(payload.Email) != "" {
		email := payload.Email
		client.Email = &email
	}
	if payload.Details != "" {
		details := payload.Details
		client.Details = &details
	}

	if payload.AccountID != "" {
		email := ""
		if client.Email != nil {
			email = *client.Email
		}
		exists, err := s.clients.ExistsForAccount(ctx, payload.AccountID, payload.Name, email)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check client duplicate")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, "this client name or email already exists for the selected account")
		}
		client.AccountID = payload.AccountID
	} else {
		account := &models.Account{Name: payload.AccountData.Name}
		if payload.AccountData.AccountManagerID != "" {
			acma := payload.AccountData.AccountManagerID
			account.AccountManagerID = &acma
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
		}
		client.AccountID = account.ID
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}

	created, err := s.clients.GetByID(ctx, client.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch created client")
	}
	return created, nil
}
