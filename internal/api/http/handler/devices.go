package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
)

// DeviceService lists and revokes device sessions. All operations act on
// behalf of the session behind the presented token.
type DeviceService interface {
	ListDevices(ctx context.Context, sessionToken string) ([]model.DeviceView, error)
	RevokeAllExceptCurrent(ctx context.Context, sessionToken string) error
	RevokeDevice(ctx context.Context, sessionToken, deviceID string) error
}

// Devices handles HTTP endpoints for device session management. These
// endpoints authenticate with the session cookie, not the access token.
type Devices struct {
	deviceService DeviceService
	logger        *logger.Logger
}

// NewDevices creates a new Devices handler.
func NewDevices(deviceService DeviceService, logger *logger.Logger) *Devices {
	return &Devices{deviceService: deviceService, logger: logger}
}

// List returns all active sessions of the current user.
func (h *Devices) List(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := sessionTokenFromCookie(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	views, err := h.deviceService.ListDevices(r.Context(), sessionToken)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// RevokeOthers terminates every session of the current user except the
// one making the request.
func (h *Devices) RevokeOthers(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := sessionTokenFromCookie(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.deviceService.RevokeAllExceptCurrent(r.Context(), sessionToken); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Revoke terminates a single session by device ID.
func (h *Devices) Revoke(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := sessionTokenFromCookie(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	deviceID := r.PathValue("deviceId")
	if deviceID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.deviceService.RevokeDevice(r.Context(), sessionToken, deviceID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
