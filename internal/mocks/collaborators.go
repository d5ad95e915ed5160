package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Hasher is a mock implementation of model.Hasher.
type Hasher struct {
	mock.Mock
}

func (m *Hasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *Hasher) Compare(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

// EmailSender is a mock implementation of model.EmailSender.
type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) SendConfirmationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *EmailSender) SendRecoveryCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// RateLimitStore is a mock implementation of model.RateLimitStore.
type RateLimitStore struct {
	mock.Mock
}

func (m *RateLimitStore) CountSince(ctx context.Context, clientID, method, path string, since time.Time) (int64, error) {
	args := m.Called(ctx, clientID, method, path, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RateLimitStore) Insert(ctx context.Context, clientID, method, path string, at time.Time) error {
	args := m.Called(ctx, clientID, method, path, at)
	return args.Error(0)
}
