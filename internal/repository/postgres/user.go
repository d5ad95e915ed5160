package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/sessionkeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, login, email, password_hash, confirmation_code, confirmation_expires_at,
			  confirmed, recovery_code, recovery_expires_at, created_at, updated_at`

func (r *UserRepository) scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Login, &user.Email, &user.PasswordHash,
		&user.ConfirmationCode, &user.ConfirmationExpiresAt, &user.Confirmed,
		&user.RecoveryCode, &user.RecoveryExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, loginOrEmail))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by login or email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByConfirmationCode(ctx context.Context, code string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE confirmation_code = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by confirmation code: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByRecoveryCode(ctx context.Context, code string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE recovery_code = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by recovery code: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, login, email, password_hash, confirmation_code, confirmation_expires_at, confirmed, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	savedUser, err := r.scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Login, user.Email, user.PasswordHash,
		user.ConfirmationCode, user.ConfirmationExpiresAt, user.Confirmed,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) SetConfirmed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}

	return nil
}

func (r *UserRepository) SetConfirmationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	query := `UPDATE users SET confirmation_code = $2, confirmation_expires_at = $3, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, code, expiresAt); err != nil {
		return fmt.Errorf("failed to set confirmation code: %w", err)
	}

	return nil
}

func (r *UserRepository) SetRecoveryCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	query := `UPDATE users SET recovery_code = $2, recovery_expires_at = $3, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, code, expiresAt); err != nil {
		return fmt.Errorf("failed to set recovery code: %w", err)
	}

	return nil
}

// UpdatePassword stores the new password hash and clears any active
// recovery code in the same statement, so a consumed code cannot be
// replayed.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, recovery_code = NULL, recovery_expires_at = NULL, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
