package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type fakeClientRepo struct {
	clients    []models.FullClient
	exists     bool
	created    *models.Client
	lastExists struct {
		accountID string
		name      string
		email     string
	}
}

func (f *fakeClientRepo) List(_ context.Context) ([]models.FullClient, error) {
	return f.clients, nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*models.FullClient, error) {
	return &models.FullClient{Client: models.Client{ID: id}}, nil
}

func (f *fakeClientRepo) ExistsForAccount(_ context.Context, accountID, name, email string) (bool, error) {
	f.lastExists.accountID = accountID
	f.lastExists.name = name
	f.lastExists.email = email
	return f.exists, nil
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	client.ID = "client-1"
	cp := *client
	f.created = &cp
	return nil
}

type fakeAccountCreator struct {
	created *models.Account
}

func (f *fakeAccountCreator) Create(_ context.Context, account *models.Account) error {
	account.ID = "account-1"
	cp := *account
	f.created = &cp
	return nil
}

func TestClientServiceCreateWithExistingAccount(t *testing.T) {
	clients := &fakeClientRepo{}
	svc := NewClientService(clients, &fakeAccountCreator{}, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), models.ClientPayload{
		Name:      "Paul Martin",
		Email:     "paul@acme.com",
		AccountID: "acc-9",
	})
	require.NoError(t, err)

	assert.Equal(t, "client-1", created.ID)
	require.NotNil(t, clients.created)
	assert.Equal(t, "acc-9", clients.created.AccountID)
	assert.Equal(t, "acc-9", clients.lastExists.accountID)
	assert.Equal(t, "paul@acme.com", clients.lastExists.email)
}

func TestClientServiceCreateRejectsDuplicates(t *testing.T) {
	clients := &fakeClientRepo{exists: true}
	svc := NewClientService(clients, &fakeAccountCreator{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.ClientPayload{
		Name:      "Paul Martin",
		AccountID: "acc-9",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Nil(t, clients.created)
}

func TestClientServiceCreateWithInlineAccount(t *testing.T) {
	clients := &fakeClientRepo{}
	accounts := &fakeAccountCreator{}
	svc := NewClientService(clients, accounts, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.ClientPayload{
		Name: "Paul Martin",
		AccountData: &models.AccountDataPayload{
			Name:             "Acme",
			AccountManagerID: "acma@hubvisory.com",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, accounts.created)
	assert.Equal(t, "Acme", accounts.created.Name)
	require.NotNil(t, clients.created)
	assert.Equal(t, "account-1", clients.created.AccountID)
	// No duplicate check runs when the account is created inline.
	assert.Empty(t, clients.lastExists.accountID)
}

func TestClientServiceCreateRequiresExactlyOneAccountSource(t *testing.T) {
	svc := NewClientService(&fakeClientRepo{}, &fakeAccountCreator{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.ClientPayload{Name: "Paul"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), models.ClientPayload{
		Name:        "Paul",
		AccountID:   "acc-9",
		AccountData: &models.AccountDataPayload{Name: "Acme"},
	})
	require.Error(t, err)
}

func TestClientServiceCreateIgnoresBlankEmail(t *testing.T) {
	clients := &fakeClientRepo{}
	svc := NewClientService(clients, &fakeAccountCreator{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), models.ClientPayload{
		Name:      "Paul Martin",
		Email:     "",
		AccountID: "acc-9",
	})
	require.NoError(t, err)
	assert.Nil(t, clients.created.Email)
	assert.Empty(t, clients.lastExists.email)
}
