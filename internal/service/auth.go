package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
)

// Auth owns the registration, email-confirmation and password-recovery
// flows. Confirmation and recovery codes are single-use and time-bound:
// consuming one invalidates it, and storing a new one supersedes the old.
type Auth struct {
	userStore       model.UserStore
	hasher          model.Hasher
	email           model.EmailSender
	confirmationTTL time.Duration
	recoveryTTL     time.Duration
	logger          *logger.Logger

	newCode func() string
	now     func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher model.Hasher,
	email model.EmailSender,
	confirmationTTL time.Duration,
	recoveryTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:       userStore,
		hasher:          hasher,
		email:           email,
		confirmationTTL: confirmationTTL,
		recoveryTTL:     recoveryTTL,
		logger:          logger,
		newCode:         uuid.NewString,
		now:             time.Now,
	}
}

// Register creates an unconfirmed user and sends the confirmation code. If
// delivery fails the user is deleted again: no orphan unconfirmed accounts
// survive a failed send.
func (a *Auth) Register(ctx context.Context, login, email, password string) error {
	a.logger.Debug("Auth service: starting user registration",
		"login", login)

	_, err := a.userStore.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: email already taken",
			"login", login)
		return model.ErrBadRequest
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"error", err.Error())
		return model.ErrBadRequest
	}

	passwordHash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"error", err.Error())
		return model.ErrBadRequest
	}

	now := a.now()
	code := a.newCode()
	expiresAt := now.Add(a.confirmationTTL)

	user := model.User{
		ID:                    uuid.New(),
		Login:                 login,
		Email:                 email,
		PasswordHash:          passwordHash,
		ConfirmationCode:      &code,
		ConfirmationExpiresAt: &expiresAt,
		Confirmed:             false,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"login", login,
			"error", err.Error())
		return model.ErrBadRequest
	}

	if err := a.email.SendConfirmationCode(ctx, email, code); err != nil {
		a.logger.Error("Auth service: failed to send confirmation code",
			"login", login,
			"error", err.Error())

		if delErr := a.userStore.Delete(ctx, created.ID); delErr != nil {
			a.logger.Error("Auth service: failed to delete user after failed send",
				"user_id", created.ID,
				"error", delErr.Error())
		}
		return model.ErrBadRequest
	}

	a.logger.Info("Auth service: user registered",
		"login", login,
		"user_id", created.ID)

	return nil
}

// Confirm consumes a confirmation code. Confirming an already-confirmed
// account is rejected: confirmation is not idempotent.
func (a *Auth) Confirm(ctx context.Context, code string) error {
	user, err := a.userStore.GetByConfirmationCode(ctx, code)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to get user by confirmation code",
				"error", err.Error())
		}
		return model.ErrBadRequest
	}

	if user.Confirmed {
		return model.ErrBadRequest
	}

	if user.ConfirmationCode == nil || *user.ConfirmationCode != code {
		return model.ErrBadRequest
	}

	if user.ConfirmationExpiresAt == nil || a.now().After(*user.ConfirmationExpiresAt) {
		return model.ErrBadRequest
	}

	if err := a.userStore.SetConfirmed(ctx, user.ID); err != nil {
		a.logger.Error("Auth service: failed to confirm user",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	a.logger.Info("Auth service: email confirmed",
		"user_id", user.ID)

	return nil
}

// ResendConfirmation stores a fresh confirmation code and sends it again.
// Only one code is stored per user, so the old one is implicitly
// invalidated.
func (a *Auth) ResendConfirmation(ctx context.Context, email string) error {
	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to get user by email",
				"error", err.Error())
		}
		return model.ErrBadRequest
	}

	if user.Confirmed {
		return model.ErrBadRequest
	}

	code := a.newCode()
	if err := a.userStore.SetConfirmationCode(ctx, user.ID, code, a.now().Add(a.confirmationTTL)); err != nil {
		a.logger.Error("Auth service: failed to set confirmation code",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	if err := a.email.SendConfirmationCode(ctx, email, code); err != nil {
		a.logger.Error("Auth service: failed to resend confirmation code",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	return nil
}

// RequestPasswordRecovery stores and sends a recovery code. An unknown
// email still returns success so the endpoint cannot be used to probe for
// account existence.
func (a *Auth) RequestPasswordRecovery(ctx context.Context, email string) error {
	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		a.logger.Error("Auth service: failed to get user by email",
			"error", err.Error())
		return model.ErrBadRequest
	}

	code := a.newCode()
	if err := a.userStore.SetRecoveryCode(ctx, user.ID, code, a.now().Add(a.recoveryTTL)); err != nil {
		a.logger.Error("Auth service: failed to set recovery code",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	if err := a.email.SendRecoveryCode(ctx, email, code); err != nil {
		a.logger.Error("Auth service: failed to send recovery code",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	return nil
}

// SetNewPassword consumes a recovery code and stores the new password
// hash. The code is cleared in the same store operation, so it cannot be
// replayed.
func (a *Auth) SetNewPassword(ctx context.Context, recoveryCode, newPassword string) error {
	user, err := a.userStore.GetByRecoveryCode(ctx, recoveryCode)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to get user by recovery code",
				"error", err.Error())
		}
		return model.ErrBadRequest
	}

	if user.RecoveryExpiresAt == nil || a.now().After(*user.RecoveryExpiresAt) {
		return model.ErrBadRequest
	}

	passwordHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"error", err.Error())
		return model.ErrBadRequest
	}

	if err := a.userStore.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		a.logger.Error("Auth service: failed to update password",
			"user_id", user.ID,
			"error", err.Error())
		return model.ErrBadRequest
	}

	a.logger.Info("Auth service: password changed",
		"user_id", user.ID)

	return nil
}

// CurrentUser returns the user record behind an authenticated request.
func (a *Auth) CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrUnauthorized
		}
		return model.User{}, err
	}
	return user, nil
}
