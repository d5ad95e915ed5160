package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates access and session-reference tokens.
// Both kinds are signed and self-expiring; the session token additionally
// carries the device id and issuance time that must match the stored
// device session for the token to be accepted.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	GenerateSessionToken(deviceID string, issuedAt, expiresAt time.Time) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseSessionToken(token string) (deviceID string, issuedAt time.Time, err error)
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	SessionToken string
}
