package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/sessionkeeper/internal/hash"
	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/dtroode/sessionkeeper/internal/testutil"
	"github.com/dtroode/sessionkeeper/internal/token"
)

// In-memory stores backing the lifecycle test. They mirror the repository
// semantics, including the conditional rotate.

type memoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *memoryUserStore) find(match func(model.User) bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *memoryUserStore) GetByLoginOrEmail(_ context.Context, loginOrEmail string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Login == loginOrEmail || u.Email == loginOrEmail })
}

func (s *memoryUserStore) GetByConfirmationCode(_ context.Context, code string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.ConfirmationCode != nil && *u.ConfirmationCode == code })
}

func (s *memoryUserStore) GetByRecoveryCode(_ context.Context, code string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.RecoveryCode != nil && *u.RecoveryCode == code })
}

func (s *memoryUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryUserStore) update(id uuid.UUID, apply func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	apply(&u)
	s.users[id] = u
	return nil
}

func (s *memoryUserStore) SetConfirmed(_ context.Context, id uuid.UUID) error {
	return s.update(id, func(u *model.User) { u.Confirmed = true })
}

func (s *memoryUserStore) SetConfirmationCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return s.update(id, func(u *model.User) {
		u.ConfirmationCode = &code
		u.ConfirmationExpiresAt = &expiresAt
	})
}

func (s *memoryUserStore) SetRecoveryCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return s.update(id, func(u *model.User) {
		u.RecoveryCode = &code
		u.RecoveryExpiresAt = &expiresAt
	})
}

func (s *memoryUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(u *model.User) {
		u.PasswordHash = passwordHash
		u.RecoveryCode = nil
		u.RecoveryExpiresAt = nil
	})
}

func (s *memoryUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.DeviceSession
	now      func() time.Time
}

func newMemorySessionStore(now func() time.Time) *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]model.DeviceSession), now: now}
}

func (s *memorySessionStore) Create(_ context.Context, session model.DeviceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.DeviceID] = session
	return nil
}

func (s *memorySessionStore) GetByDeviceID(_ context.Context, deviceID string) (model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[deviceID]
	if !ok {
		return model.DeviceSession{}, model.ErrNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Rotate(_ context.Context, deviceID string, prevIssuedAt, newIssuedAt, newExpiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[deviceID]
	if !ok || !session.IssuedAt.Equal(prevIssuedAt) || !session.ExpiresAt.After(s.now()) {
		return false, nil
	}
	session.IssuedAt = newIssuedAt
	session.ExpiresAt = newExpiresAt
	s.sessions[deviceID] = session
	return true, nil
}

func (s *memorySessionStore) Delete(_ context.Context, deviceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[deviceID]; !ok {
		return false, nil
	}
	delete(s.sessions, deviceID)
	return true, nil
}

func (s *memorySessionStore) DeleteAllExcept(_ context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, session := range s.sessions {
		if session.UserID == userID && id != deviceID {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memorySessionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sessions []model.DeviceSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

type captureEmailSender struct {
	lastCode string
}

func (s *captureEmailSender) SendConfirmationCode(_ context.Context, _, code string) error {
	s.lastCode = code
	return nil
}

func (s *captureEmailSender) SendRecoveryCode(_ context.Context, _, code string) error {
	s.lastCode = code
	return nil
}

// TestAccountLifecycle runs the full account path with the real token
// codec: register, confirm, login, refresh, replay the superseded token,
// logout. Only the stores and the email channel are in-memory.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	lg := testutil.MakeNoopLogger()

	current := time.Now().UTC().Truncate(time.Second)
	clock := func() time.Time { return current }

	userStore := newMemoryUserStore()
	sessionStore := newMemorySessionStore(clock)
	emailSender := &captureEmailSender{}
	hasher := hash.NewBcrypt(4)
	tokenManager := token.NewJWT("integration-secret", 15*time.Minute)

	authSvc := NewAuth(userStore, hasher, emailSender, 5*time.Minute, 24*time.Hour, lg)
	authSvc.now = clock

	sessionSvc := NewSession(userStore, sessionStore, tokenManager, hasher, 720*time.Hour, lg)
	sessionSvc.now = clock

	// Registration delivers a code; login before confirmation must fail.
	require.NoError(t, authSvc.Register(ctx, "alice", "alice@example.com", "secret1"))
	require.NotEmpty(t, emailSender.lastCode)

	_, err := sessionSvc.Login(ctx, "alice", "secret1", "1.2.3.4", "Chrome 105")
	require.ErrorIs(t, err, model.ErrUnauthorized)

	require.NoError(t, authSvc.Confirm(ctx, emailSender.lastCode))

	// Login mints a pair; the access token resolves back to the user.
	pair1, err := sessionSvc.Login(ctx, "alice", "secret1", "1.2.3.4", "Chrome 105")
	require.NoError(t, err)

	user, err := userStore.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	gotID, err := sessionSvc.GetUserID(ctx, pair1.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)

	// Refresh rotates the session and invalidates the presented token.
	current = current.Add(2 * time.Second)
	pair2, err := sessionSvc.Refresh(ctx, pair1.SessionToken)
	require.NoError(t, err)
	require.NotEqual(t, pair1.SessionToken, pair2.SessionToken)

	_, err = sessionSvc.Refresh(ctx, pair1.SessionToken)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.ErrorIs(t, sessionSvc.Logout(ctx, pair1.SessionToken), model.ErrUnauthorized)

	// The rotated token still works and logout removes the record.
	current = current.Add(2 * time.Second)
	require.NoError(t, sessionSvc.Logout(ctx, pair2.SessionToken))

	sessions, err := sessionStore.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = sessionSvc.Refresh(ctx, pair2.SessionToken)
	require.ErrorIs(t, err, model.ErrUnauthorized)
}
