package mocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TokenManager is a mock implementation of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GenerateSessionToken(deviceID string, issuedAt, expiresAt time.Time) (string, error) {
	args := m.Called(deviceID, issuedAt, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (string, time.Time, error) {
	args := m.Called(token)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
