package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubvisory/tanuki-api/internal/models"
)

var fullClientColumnNames = []string{
	"id", "name", "email", "details", "account_id",
	"account.id", "account.name", "account.account_manager_id",
	"acma_id", "acma_name", "acma_picture_url", "acma_position", "acma_startup",
}

func TestClientRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	rows := sqlmock.NewRows(fullClientColumnNames).
		AddRow("c1", "Paul", nil, nil, "a1", "a1", "Acme", "acma@x.co",
			"acma@x.co", "Marc", "", "Account Manager", "epic").
		AddRow("c2", "Zoé", nil, nil, "a2", "a2", "Beta", nil,
			nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY LOWER(c.name) ASC")).
		WillReturnRows(rows)

	clients, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, clients, 2)
	require.NotNil(t, clients[0].Account.AccountManager)
	assert.Equal(t, "Marc", clients[0].Account.AccountManager.Name)
	assert.Nil(t, clients[1].Account.AccountManager)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryExistsForAccount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM clients WHERE account_id = $1 AND (LOWER(name) = LOWER($2) OR LOWER(email) = LOWER($3)) LIMIT 1")).
		WithArgs("a1", "Paul", "paul@acme.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsForAccount(context.Background(), "a1", "Paul", "paul@acme.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryExistsForAccountSkipsEmailWhenBlank(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM clients WHERE account_id = $1 AND (LOWER(name) = LOWER($2)) LIMIT 1")).
		WithArgs("a1", "Paul").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsForAccount(context.Background(), "a1", "Paul", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectExec("INSERT INTO clients").
		WithArgs(sqlmock.AnyArg(), "Paul", nil, nil, "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	client := &models.Client{Name: "Paul", AccountID: "a1"}
	require.NoError(t, repo.Create(context.Background(), client))
	assert.NotEmpty(t, client.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
