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

var _ model.DeviceSessionStore = (*DeviceSessionRepository)(nil)

type DeviceSessionRepository struct {
	db *Connection
}

func NewDeviceSessionRepository(db *Connection) *DeviceSessionRepository {
	return &DeviceSessionRepository{db: db}
}

func (r *DeviceSessionRepository) Create(ctx context.Context, session model.DeviceSession) error {
	const query = `
        INSERT INTO device_sessions (
            id, device_id, user_id, issued_at, expires_at, device_ip, device_name, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
    `

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		session.ID, session.DeviceID, session.UserID, session.IssuedAt, session.ExpiresAt,
		session.DeviceIP, session.DeviceName,
	)
	if err != nil {
		return fmt.Errorf("failed to create device session: %w", err)
	}
	return nil
}

func (r *DeviceSessionRepository) GetByDeviceID(ctx context.Context, deviceID string) (model.DeviceSession, error) {
	const query = `
        SELECT id, device_id, user_id, issued_at, expires_at, device_ip, device_name, created_at, updated_at
        FROM device_sessions WHERE device_id = $1
    `
	var s model.DeviceSession
	err := r.db.QueryRow(ctx, query, deviceID).Scan(
		&s.ID, &s.DeviceID, &s.UserID, &s.IssuedAt, &s.ExpiresAt,
		&s.DeviceIP, &s.DeviceName, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeviceSession{}, model.ErrNotFound
		}
		return model.DeviceSession{}, fmt.Errorf("failed to get device session by device id: %w", err)
	}
	return s, nil
}

// Rotate is a conditional update: the row must still carry prevIssuedAt and
// must not be expired. Two concurrent refreshes presenting the same token
// race on this statement and exactly one of them matches.
func (r *DeviceSessionRepository) Rotate(ctx context.Context, deviceID string, prevIssuedAt, newIssuedAt, newExpiresAt time.Time) (bool, error) {
	const query = `
        UPDATE device_sessions SET issued_at = $3, expires_at = $4, updated_at = NOW()
        WHERE device_id = $1 AND issued_at = $2 AND expires_at > NOW()
    `
	tag, err := r.db.Exec(ctx, query, deviceID, prevIssuedAt, newIssuedAt, newExpiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to rotate device session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DeviceSessionRepository) Delete(ctx context.Context, deviceID string) (bool, error) {
	const query = `DELETE FROM device_sessions WHERE device_id = $1`

	tag, err := r.db.Exec(ctx, query, deviceID)
	if err != nil {
		return false, fmt.Errorf("failed to delete device session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DeviceSessionRepository) DeleteAllExcept(ctx context.Context, userID uuid.UUID, deviceID string) (int64, error) {
	const query = `DELETE FROM device_sessions WHERE user_id = $1 AND device_id <> $2`

	tag, err := r.db.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete device sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *DeviceSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeviceSession, error) {
	const query = `
        SELECT id, device_id, user_id, issued_at, expires_at, device_ip, device_name, created_at, updated_at
        FROM device_sessions WHERE user_id = $1 ORDER BY issued_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.DeviceSession
	for rows.Next() {
		var s model.DeviceSession
		if err := rows.Scan(
			&s.ID, &s.DeviceID, &s.UserID, &s.IssuedAt, &s.ExpiresAt,
			&s.DeviceIP, &s.DeviceName, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device sessions: %w", err)
	}

	return sessions, nil
}
