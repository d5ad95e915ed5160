package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/dtroode/sessionkeeper/internal/testutil"
)

type deviceServiceMock struct {
	mock.Mock
}

func (m *deviceServiceMock) ListDevices(ctx context.Context, sessionToken string) ([]model.DeviceView, error) {
	args := m.Called(ctx, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeviceView), args.Error(1)
}

func (m *deviceServiceMock) RevokeAllExceptCurrent(ctx context.Context, sessionToken string) error {
	return m.Called(ctx, sessionToken).Error(0)
}

func (m *deviceServiceMock) RevokeDevice(ctx context.Context, sessionToken, deviceID string) error {
	return m.Called(ctx, sessionToken, deviceID).Error(0)
}

func TestDevices_List(t *testing.T) {
	t.Parallel()

	svc := &deviceServiceMock{}
	svc.On("ListDevices", mock.Anything, "session").Return([]model.DeviceView{
		{IP: "1.2.3.4", Title: "Chrome 105", LastActiveDate: "2026-08-30T10:00:00Z", DeviceID: "dev-1"},
	}, nil).Once()

	h := NewDevices(svc, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/security/devices", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session"})
	rec := httptest.NewRecorder()

	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var views []model.DeviceView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "dev-1", views[0].DeviceID)
}

func TestDevices_List_NoCookie(t *testing.T) {
	t.Parallel()

	h := NewDevices(&deviceServiceMock{}, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/security/devices", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDevices_RevokeOthers(t *testing.T) {
	t.Parallel()

	svc := &deviceServiceMock{}
	svc.On("RevokeAllExceptCurrent", mock.Anything, "session").Return(nil).Once()

	h := NewDevices(svc, testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodDelete, "/security/devices", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session"})
	rec := httptest.NewRecorder()

	h.RevokeOthers(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestDevices_Revoke(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusNoContent},
		{name: "unknown device", svcErr: model.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "foreign device", svcErr: model.ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &deviceServiceMock{}
			svc.On("RevokeDevice", mock.Anything, "session", "dev-2").Return(tt.svcErr).Once()

			h := NewDevices(svc, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodDelete, "/security/devices/dev-2", nil)
			req.SetPathValue("deviceId", "dev-2")
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session"})
			rec := httptest.NewRecorder()

			h.Revoke(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
