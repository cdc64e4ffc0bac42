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

var accountColumnNames = []string{
	"id", "name", "account_manager_id",
	"acma_id", "acma_name", "acma_picture_url", "acma_position", "acma_startup",
}

func TestAccountRepositoryListSearchesAccountAndManagerNames(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows(accountColumnNames).
		AddRow("a1", "Acme", "marc@x.co", "marc@x.co", "Marc", "", "Account Manager", "epic")
	mock.ExpectQuery(regexp.QuoteMeta("(a.name ILIKE $1 OR m.name ILIKE $1)")).
		WithArgs("%acm%").
		WillReturnRows(rows)

	accounts, err := repo.List(context.Background(), models.AccountFilter{Query: "acm"})
	require.NoError(t, err)

	require.Len(t, accounts, 1)
	require.NotNil(t, accounts[0].AccountManager)
	assert.Equal(t, "Marc", accounts[0].AccountManager.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryListFiltersByAccountManager(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("a.account_manager_id = $1")).
		WithArgs("marc@x.co").
		WillReturnRows(sqlmock.NewRows(accountColumnNames))

	accounts, err := repo.List(context.Background(), models.AccountFilter{AccountManagerID: "marc@x.co"})
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "Acme", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &models.Account{Name: "Acme"}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
