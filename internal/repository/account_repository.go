package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hubvisory/tanuki-api/internal/models"
)

// AccountRepository manages persistence for account records.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type accountRow struct {
	models.Account
	ACMAID         sql.NullString `db:"acma_id"`
	ACMAName       sql.NullString `db:"acma_name"`
	ACMAPictureURL sql.NullString `db:"acma_picture_url"`
	ACMAPosition   sql.NullString `db:"acma_position"`
	ACMAStartup    sql.NullString `db:"acma_startup"`
}

func (row accountRow) toModel() models.AccountWithACMA {
	account := models.AccountWithACMA{Account: row.Account}
	if row.ACMAID.Valid {
		account.AccountManager = &models.Employee{
			ID:         row.ACMAID.String,
			Name:       row.ACMAName.String,
			PictureURL: row.ACMAPictureURL.String,
			Position:   row.ACMAPosition.String,
			Startup:    row.ACMAStartup.String,
		}
	}
	return account
}

// List returns accounts with their account manager, searched by account or
// manager name, sorted case-insensitively by name.
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.AccountWithACMA, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(a.name ILIKE $%d OR m.name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.AccountManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.account_manager_id = $%d", len(args)+1))
		args = append(args, filter.AccountManagerID)
	}

	query := fmt.Sprintf(`SELECT a.id, a.name, a.account_manager_id,
	m.id AS acma_id, m.name AS acma_name, m.picture_url AS acma_picture_url,
	m.position AS acma_position, m.startup AS acma_startup
	FROM accounts a
	LEFT JOIN employees m ON m.id = a.account_manager_id
	WHERE %s ORDER BY LOWER(a.name) ASC`, strings.Join(conditions, " AND "))

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]models.AccountWithACMA, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toModel())
	}
	return accounts, nil
}

// Create inserts a new account record.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	const query = `INSERT INTO accounts (id, name, account_manager_id)
	VALUES (:id, :name, :account_manager_id)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}
