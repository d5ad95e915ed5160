package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeviceSessionStore persists device sessions. A device session is the
// server-side anchor for a refresh-capable session and the unit of
// revocation: at most one live row exists per device id.
type DeviceSessionStore interface {
	Create(ctx context.Context, session DeviceSession) error
	GetByDeviceID(ctx context.Context, deviceID string) (DeviceSession, error)
	// Rotate refreshes issued_at/expires_at for the given device id, but
	// only if the stored issued_at still equals prevIssuedAt and the row
	// has not expired. Returns false when no row matched, which means the
	// presented token was already superseded, expired or revoked.
	Rotate(ctx context.Context, deviceID string, prevIssuedAt, newIssuedAt, newExpiresAt time.Time) (bool, error)
	Delete(ctx context.Context, deviceID string) (bool, error)
	DeleteAllExcept(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]DeviceSession, error)
}

// DeviceSession represents a stored device session record.
type DeviceSession struct {
	ID         uuid.UUID
	DeviceID   string
	UserID     uuid.UUID
	IssuedAt   time.Time
	ExpiresAt  time.Time
	DeviceIP   string
	DeviceName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DeviceView is the display form of a device session returned to clients.
type DeviceView struct {
	IP             string `json:"ip"`
	Title          string `json:"title"`
	LastActiveDate string `json:"lastActiveDate"`
	DeviceID       string `json:"deviceId"`
}
