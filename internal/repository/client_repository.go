package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hubvisory/tanuki-api/internal/models"
)

// ClientRepository manages persistence for client records.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const fullClientColumns = `c.id, c.name, c.email, c.details, c.account_id,
	a.id AS "account.id", a.name AS "account.name", a.account_manager_id AS "account.account_manager_id"`

type fullClientRow struct {
	models.Client
	Account        models.Account `db:"account"`
	ACMAID         sql.NullString `db:"acma_id"`
	ACMAName       sql.NullString `db:"acma_name"`
	ACMAPictureURL sql.NullString `db:"acma_picture_url"`
	ACMAPosition   sql.NullString `db:"acma_position"`
	ACMAStartup    sql.NullString `db:"acma_startup"`
}

func (row fullClientRow) toModel() models.FullClient {
	full := models.FullClient{
		Client:  row.Client,
		Account: models.AccountWithACMA{Account: row.Account},
	}
	if row.ACMAID.Valid {
		full.Account.AccountManager = &models.Employee{
			ID:         row.ACMAID.String,
			Name:       row.ACMAName.String,
			PictureURL: row.ACMAPictureURL.String,
			Position:   row.ACMAPosition.String,
			Startup:    row.ACMAStartup.String,
		}
	}
	return full
}

const fullClientQuery = fullClientColumns + `,
	m.id AS acma_id, m.name AS acma_name, m.picture_url AS acma_picture_url,
	m.position AS acma_position, m.startup AS acma_startup
	FROM clients c
	JOIN accounts a ON a.id = c.account_id
	LEFT JOIN employees m ON m.id = a.account_manager_id`

// List returns every client with its account and account manager, sorted
// case-insensitively by name.
func (r *ClientRepository) List(ctx context.Context) ([]models.FullClient, error) {
	query := fmt.Sprintf("SELECT %s ORDER BY LOWER(c.name) ASC", fullClientQuery)
	var rows []fullClientRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]models.FullClient, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toModel())
	}
	return clients, nil
}

// GetByID fetches a client with its relations.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.FullClient, error) {
	query := fmt.Sprintf("SELECT %s WHERE c.id = $1", fullClientQuery)
	var row fullClientRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	full := row.toModel()
	return &full, nil
}

// ExistsForAccount reports whether the account already has a client with the
// given name, or with the given email when one is provided.
func (r *ClientRepository) ExistsForAccount(ctx context.Context, accountID, name, email string) (bool, error) {
	query := "SELECT 1 FROM clients WHERE account_id = $1 AND (LOWER(name) = LOWER($2)"
	args := []interface{}{accountID, name}
	if email != "" {
		query += " OR LOWER(email) = LOWER($3)"
		args = append(args, email)
	}
	query += ") LIMIT 1"

	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check client duplicate: %w", err)
	}
	return true, nil
}

// Create inserts a new client record.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	const query = `INSERT INTO clients (id, name, email, details, account_id)
	VALUES (:id, :name, :email, :details, :account_id)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}
