package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// UserRepository persists user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository builds a UserRepository over the shared handle.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A clash on email yields models.ErrDuplicateIdentity.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, name, farm_name, location, phone, subscription, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :name, :farm_name, :location, :phone, :subscription, :created_at, :updated_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail returns the user with exactly this email, or nil when none exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ? LIMIT 1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// FindByID returns the user with this id, or nil when none exists.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// UpdateProfile overwrites the editable profile columns.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	query := `
        UPDATE users
        SET name = :name,
            farm_name = :farm_name,
            location = :location,
            phone = :phone,
            subscription = :subscription,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFoundOrForbidden
	}
	return nil
}

// ListWithActiveFlocks returns every user owning at least one active flock.
func (r *UserRepository) ListWithActiveFlocks(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	query := `
        SELECT u.* FROM users u
        WHERE EXISTS (SELECT 1 FROM flocks f WHERE f.user_id = u.id AND f.status = 'active')
        ORDER BY u.created_at ASC
    `
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users with active flocks: %w", err)
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
