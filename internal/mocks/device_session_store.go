package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/sessionkeeper/internal/model"
)

// DeviceSessionStore is a mock implementation of model.DeviceSessionStore.
type DeviceSessionStore struct {
	mock.Mock
}

func (m *DeviceSessionStore) Create(ctx context.Context, session model.DeviceSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *DeviceSessionStore) GetByDeviceID(ctx context.Context, deviceID string) (model.DeviceSession, error) {
	args := m.Called(ctx, deviceID)
	return args.Get(0).(model.DeviceSession), args.Error(1)
}

func (m *DeviceSessionStore) Rotate(ctx context.Context, deviceID string, prevIssuedAt, newIssuedAt, newExpiresAt time.Time) (bool, error) {
	args := m.Called(ctx, deviceID, prevIssuedAt, newIssuedAt, newExpiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *DeviceSessionStore) Delete(ctx context.Context, deviceID string) (bool, error) {
	args := m.Called(ctx, deviceID)
	return args.Bool(0), args.Error(1)
}

func (m *DeviceSessionStore) DeleteAllExcept(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	args := m.Called(ctx, userID, deviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DeviceSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeviceSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeviceSession), args.Error(1)
}
