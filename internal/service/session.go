package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
)

// Session orchestrates the device-session state machine: login, refresh,
// logout, enumeration and revocation. It owns the rotation algorithm that
// keeps the stateless session token and the stored record consistent.
//
// Every login mints a new device session, even from an already-known
// device. Validation failures surface as model sentinel errors; nothing is
// retried and a failed refresh leaves the stored record untouched.
type Session struct {
	userStore    model.UserStore
	sessionStore model.DeviceSessionStore
	tokenManager model.TokenManager
	hasher       model.Hasher
	sessionTTL   time.Duration
	logger       *logger.Logger

	newDeviceID func() string
	now         func() time.Time
}

func NewSession(
	userStore model.UserStore,
	sessionStore model.DeviceSessionStore,
	tokenManager model.TokenManager,
	hasher model.Hasher,
	sessionTTL time.Duration,
	logger *logger.Logger,
) *Session {
	return &Session{
		userStore:    userStore,
		sessionStore: sessionStore,
		tokenManager: tokenManager,
		hasher:       hasher,
		sessionTTL:   sessionTTL,
		logger:       logger,
		newDeviceID:  uuid.NewString,
		now:          time.Now,
	}
}

// Login verifies credentials and creates a fresh device session. Wrong
// password, unknown user and unconfirmed email are deliberately
// indistinguishable to the caller.
func (s *Session) Login(ctx context.Context, loginOrEmail, password, deviceIP, deviceName string) (model.TokenPair, error) {
	user, err := s.userStore.GetByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Session service: failed to get user",
				"error", err.Error())
		}
		return model.TokenPair{}, model.ErrUnauthorized
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return model.TokenPair{}, model.ErrUnauthorized
	}

	if !user.Confirmed {
		return model.TokenPair{}, model.ErrUnauthorized
	}

	// JWT issued-at has second precision; the stored record must agree
	// exactly for the rotation check to work.
	now := s.now().UTC().Truncate(time.Second)
	session := model.DeviceSession{
		ID:         uuid.New(),
		DeviceID:   s.newDeviceID(),
		UserID:     user.ID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.sessionTTL),
		DeviceIP:   deviceIP,
		DeviceName: deviceName,
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		s.logger.Error("Session service: failed to create device session",
			"device_id", session.DeviceID,
			"error", err.Error())
		return model.TokenPair{}, model.ErrUnauthorized
	}

	pair, err := s.mintPair(user.ID, session)
	if err != nil {
		s.logger.Error("Session service: failed to mint tokens",
			"device_id", session.DeviceID,
			"error", err.Error())
		return model.TokenPair{}, model.ErrUnauthorized
	}

	s.logger.Info("Session service: login succeeded",
		"user_id", user.ID,
		"device_id", session.DeviceID)

	return pair, nil
}

// Refresh rotates the device session named by the token and mints a fresh
// token pair bound to the same device id. The rotation is a conditional
// update keyed on the stored issuance time, so of two concurrent refreshes
// presenting the same token at most one succeeds; the other observes a
// mismatch and fails.
func (s *Session) Refresh(ctx context.Context, sessionToken string) (model.TokenPair, error) {
	session, err := s.validateSessionToken(ctx, sessionToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	newIssuedAt := s.now().UTC().Truncate(time.Second)
	prevIssuedAt := session.IssuedAt
	session.IssuedAt = newIssuedAt
	session.ExpiresAt = newIssuedAt.Add(s.sessionTTL)

	// Mint before committing the rotation: a mint failure must leave the
	// stored record untouched so the presented token stays usable.
	pair, err := s.mintPair(session.UserID, session)
	if err != nil {
		s.logger.Error("Session service: failed to mint tokens",
			"device_id", session.DeviceID,
			"error", err.Error())
		return model.TokenPair{}, model.ErrUnauthorized
	}

	rotated, err := s.sessionStore.Rotate(ctx, session.DeviceID, prevIssuedAt, newIssuedAt, session.ExpiresAt)
	if err != nil {
		s.logger.Error("Session service: failed to rotate device session",
			"device_id", session.DeviceID,
			"error", err.Error())
		return model.TokenPair{}, model.ErrUnauthorized
	}
	if !rotated {
		// The record changed between validation and rotation: a concurrent
		// refresh won the race with the same token.
		return model.TokenPair{}, model.ErrUnauthorized
	}

	return pair, nil
}

// Logout deletes the device session named by the token. Already-issued
// access tokens stay valid until their own expiry; only future refreshes
// are revoked.
func (s *Session) Logout(ctx context.Context, sessionToken string) error {
	session, err := s.validateSessionToken(ctx, sessionToken)
	if err != nil {
		return err
	}

	deleted, err := s.sessionStore.Delete(ctx, session.DeviceID)
	if err != nil {
		s.logger.Error("Session service: failed to delete device session",
			"device_id", session.DeviceID,
			"error", err.Error())
		return model.ErrUnauthorized
	}
	if !deleted {
		return model.ErrUnauthorized
	}

	s.logger.Info("Session service: logout succeeded",
		"user_id", session.UserID,
		"device_id", session.DeviceID)

	return nil
}

// ListDevices returns all live device sessions of the calling user in
// display form.
func (s *Session) ListDevices(ctx context.Context, sessionToken string) ([]model.DeviceView, error) {
	session, err := s.validateSessionToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionStore.ListByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("Session service: failed to list device sessions",
			"user_id", session.UserID,
			"error", err.Error())
		return nil, model.ErrUnauthorized
	}

	views := make([]model.DeviceView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, model.DeviceView{
			IP:             sess.DeviceIP,
			Title:          sess.DeviceName,
			LastActiveDate: sess.IssuedAt.UTC().Format(time.RFC3339),
			DeviceID:       sess.DeviceID,
		})
	}

	return views, nil
}

// RevokeAllExceptCurrent deletes every device session of the calling user
// apart from the one named by the token.
func (s *Session) RevokeAllExceptCurrent(ctx context.Context, sessionToken string) error {
	session, err := s.validateSessionToken(ctx, sessionToken)
	if err != nil {
		return err
	}

	count, err := s.sessionStore.DeleteAllExcept(ctx, session.UserID, session.DeviceID)
	if err != nil {
		s.logger.Error("Session service: failed to delete device sessions",
			"user_id", session.UserID,
			"error", err.Error())
		return model.ErrUnauthorized
	}

	s.logger.Info("Session service: revoked other device sessions",
		"user_id", session.UserID,
		"count", count)

	return nil
}

// RevokeDevice deletes one device session of the calling user. Revoking a
// device owned by another user fails with ErrForbidden and leaves the
// target untouched.
func (s *Session) RevokeDevice(ctx context.Context, sessionToken, targetDeviceID string) error {
	session, err := s.validateSessionToken(ctx, sessionToken)
	if err != nil {
		return err
	}

	target, err := s.sessionStore.GetByDeviceID(ctx, targetDeviceID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		s.logger.Error("Session service: failed to get target device session",
			"device_id", targetDeviceID,
			"error", err.Error())
		return model.ErrUnauthorized
	}

	if target.UserID != session.UserID {
		return model.ErrForbidden
	}

	deleted, err := s.sessionStore.Delete(ctx, target.DeviceID)
	if err != nil {
		s.logger.Error("Session service: failed to delete device session",
			"device_id", target.DeviceID,
			"error", err.Error())
		return model.ErrUnauthorized
	}
	if !deleted {
		return model.ErrNotFound
	}

	return nil
}

// GetUserID resolves the user id from a stateless access token. No store
// access is involved.
func (s *Session) GetUserID(ctx context.Context, accessToken string) (uuid.UUID, error) {
	return s.tokenManager.ParseAccessToken(accessToken)
}

// validateSessionToken checks the token signature and expiry, then the
// hybrid half of the invariant: a live stored record for the device id
// whose issuance time agrees with the token. A superseded token fails the
// issuance comparison even though its own clock has not run out.
func (s *Session) validateSessionToken(ctx context.Context, sessionToken string) (model.DeviceSession, error) {
	deviceID, issuedAt, err := s.tokenManager.ParseSessionToken(sessionToken)
	if err != nil {
		return model.DeviceSession{}, model.ErrUnauthorized
	}

	session, err := s.sessionStore.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Session service: failed to get device session",
				"device_id", deviceID,
				"error", err.Error())
		}
		return model.DeviceSession{}, model.ErrUnauthorized
	}

	if !session.ExpiresAt.After(s.now()) {
		return model.DeviceSession{}, model.ErrUnauthorized
	}

	if session.IssuedAt.Unix() != issuedAt.Unix() {
		return model.DeviceSession{}, model.ErrUnauthorized
	}

	return session, nil
}

func (s *Session) mintPair(userID uuid.UUID, session model.DeviceSession) (model.TokenPair, error) {
	access, err := s.tokenManager.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	sessionToken, err := s.tokenManager.GenerateSessionToken(session.DeviceID, session.IssuedAt, session.ExpiresAt)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: access, SessionToken: sessionToken}, nil
}
