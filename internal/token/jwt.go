package token

import (
	"fmt"
	"time"

	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents JWT claims with token type and subject identifiers.
// A token carries either a user ID (access) or a device ID (session);
// the typ claim discriminates the two shapes at parse time.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. The signing key is
// process-wide configuration; rotating it invalidates all outstanding
// tokens of both kinds.
type JWT struct {
	secretKey string
	accessTTL time.Duration
}

// NewJWT creates a new JWT token manager with the provided secret key and
// access-token lifetime.
func NewJWT(secretKey string, accessTTL time.Duration) model.TokenManager {
	return &JWT{secretKey: secretKey, accessTTL: accessTTL}
}

const (
	typeAccess  = "access"
	typeSession = "session"
)

// GenerateAccessToken creates a short-lived stateless access token.
func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID:    userID,
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateSessionToken creates a session-reference token bound to a device
// session record. issuedAt and expiresAt come from the record, so the
// embedded issuance time always agrees with the stored one at mint time.
func (j *JWT) GenerateSessionToken(deviceID string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		DeviceID:  deviceID,
		TokenType: typeSession,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates and extracts the user ID from an access token.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.TokenType != typeAccess {
		return uuid.Nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("access token has no user id")
	}
	return claims.UserID, nil
}

// ParseSessionToken validates a session-reference token and extracts the
// device ID and embedded issuance time.
func (j *JWT) ParseSessionToken(tokenString string) (string, time.Time, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.TokenType != typeSession {
		return "", time.Time{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.DeviceID == "" {
		return "", time.Time{}, fmt.Errorf("session token has no device id")
	}
	if claims.IssuedAt == nil {
		return "", time.Time{}, fmt.Errorf("session token has no issued at")
	}
	return claims.DeviceID, claims.IssuedAt.Time, nil
}

func (j *JWT) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}
