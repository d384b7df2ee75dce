package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/agendahq/agenda/internal/domain"
)

const userColumns = "id, email, password, name, role, created_at, updated_at"

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. A duplicate email surfaces as
// domain.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	var created domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, password, name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		user.Email, user.Password, user.Name, user.Role,
	).StructScan(&created)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

// UpsertByEmail creates a new user or refreshes the display name of an
// existing one. Used by OAuth sign-in, which trusts the provider's email.
func (r *UserRepository) UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, password, name, role)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email)
		 DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		 RETURNING `+userColumns,
		user.Email, user.Password, user.Name, user.Role,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &result, nil
}
