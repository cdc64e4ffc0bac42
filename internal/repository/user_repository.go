package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hubvisory/tanuki-api/internal/models"
)

// UserRepository manages persistence for application users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail fetches a user by email. The id mirrors the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = "SELECT id, email, name, picture_url, role, password_hash FROM users WHERE id = $1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (id, email, name, picture_url, role, password_hash)
	VALUES (:id, :email, :name, :picture_url, :role, :password_hash)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
