package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (User, error)
	GetByConfirmationCode(ctx context.Context, code string) (User, error)
	GetByRecoveryCode(ctx context.Context, code string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	SetConfirmed(ctx context.Context, id uuid.UUID) error
	SetConfirmationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	SetRecoveryCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// User represents a stored user with authentication material.
// A user with Confirmed == false can never successfully log in.
type User struct {
	ID                    uuid.UUID
	Login                 string
	Email                 string
	PasswordHash          string
	ConfirmationCode      *string
	ConfirmationExpiresAt *time.Time
	Confirmed             bool
	RecoveryCode          *string
	RecoveryExpiresAt     *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
