package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

// UserAdapter implements the UserRepository interface using PostgreSQL.
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter.
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

const pqUniqueViolation = "23505"

// Create creates a new user. Duplicate email or username surfaces as a
// conflict so registration can report which field is taken.
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	if user == nil {
		return apperrors.NewInternalError("user is nil", fmt.Errorf("user is nil"))
	}

	query := `
		INSERT INTO users (id, username, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError(fmt.Sprintf("user already exists: %s", pqErr.Constraint))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}
	return nil
}

const userColumns = `id, username, email, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entities.User, error) {
	u := &entities.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a *UserAdapter) getBy(ctx context.Context, column, value string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with %s %s not found", column, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email.
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getBy(ctx, "email", email)
}

// GetByUsername retrieves a user by username.
func (a *UserAdapter) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return a.getBy(ctx, "username", username)
}

// List returns users, newest first.
func (a *UserAdapter) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, userColumns)

	rows, err := a.client.DB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate users", err)
	}
	return users, nil
}
