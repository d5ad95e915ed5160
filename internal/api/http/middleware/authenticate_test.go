package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appctx "github.com/dtroode/sessionkeeper/internal/api/http/context"
	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/dtroode/sessionkeeper/internal/testutil"
)

type tokenServiceMock struct {
	mock.Mock
}

func (m *tokenServiceMock) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		tokenSvcUserID uuid.UUID
		tokenSvcErr    error
		wantStatus     int
		wantUserInCtx  bool
	}{
		{
			name:       "missing authorization header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer invalid",
			tokenSvcErr: model.ErrUnauthorized,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:           "nil user id from token",
			authHeader:     "Bearer token",
			tokenSvcUserID: uuid.Nil,
			wantStatus:     http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer token",
			tokenSvcUserID: userID,
			wantStatus:     http.StatusOK,
			wantUserInCtx:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &tokenServiceMock{}
			if tt.authHeader != "" && tt.authHeader != "Basic dXNlcjpwYXNz" {
				svc.On("GetUserID", mock.Anything, mock.AnythingOfType("string")).Return(tt.tokenSvcUserID, tt.tokenSvcErr)
			}

			cm := appctx.NewManager()
			m := NewAuthenticate(svc, cm, testutil.MakeNoopLogger())

			var gotUserID uuid.UUID
			var gotUser bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, gotUser = cm.GetUserIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			m.Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUserInCtx, gotUser)
			if tt.wantUserInCtx {
				assert.Equal(t, userID, gotUserID)
			}
		})
	}
}
