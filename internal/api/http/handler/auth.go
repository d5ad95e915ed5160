package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/sessionkeeper/internal/api/http/middleware"
	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
)

// sessionCookieName is the cookie carrying the session-reference token.
const sessionCookieName = "refreshToken"

// AuthService defines registration, confirmation and recovery operations.
type AuthService interface {
	Register(ctx context.Context, login, email, password string) error
	Confirm(ctx context.Context, code string) error
	ResendConfirmation(ctx context.Context, email string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	SetNewPassword(ctx context.Context, recoveryCode, newPassword string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// SessionService defines login and session lifecycle operations.
type SessionService interface {
	Login(ctx context.Context, loginOrEmail, password, deviceIP, deviceName string) (model.TokenPair, error)
	Refresh(ctx context.Context, sessionToken string) (model.TokenPair, error)
	Logout(ctx context.Context, sessionToken string) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	sessionService SessionService
	contextManager model.ContextManager
	cookieTTL      time.Duration
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler. cookieTTL bounds the session cookie
// lifetime and should match the session TTL.
func NewAuth(
	authService AuthService,
	sessionService SessionService,
	contextManager model.ContextManager,
	cookieTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		sessionService: sessionService,
		contextManager: contextManager,
		cookieTTL:      cookieTTL,
		logger:         logger,
	}
}

type registrationRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmationRequest struct {
	Code string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	LoginOrEmail string `json:"loginOrEmail"`
	Password     string `json:"password"`
}

type newPasswordRequest struct {
	NewPassword  string `json:"newPassword"`
	RecoveryCode string `json:"recoveryCode"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type meResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

// Register creates an unconfirmed account and emails the confirmation
// code.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !validLogin(req.Login) || !validEmail(req.Email) || !validPassword(req.Password) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.authService.Register(r.Context(), req.Login, req.Email, req.Password); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Confirm consumes an emailed confirmation code.
func (h *Auth) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.authService.Confirm(r.Context(), req.Code); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResendConfirmation re-issues the confirmation code for an unconfirmed
// account.
func (h *Auth) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEmail(req.Email) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.authService.ResendConfirmation(r.Context(), req.Email); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Login verifies credentials and opens a new device session. The access
// token is returned in the body, the session token in an http-only
// cookie.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LoginOrEmail == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pair, err := h.sessionService.Login(r.Context(),
		req.LoginOrEmail,
		req.Password,
		middleware.ClientIP(r),
		deviceName(r))
	if err != nil {
		handleError(w, err)
		return
	}

	h.setSessionCookie(w, pair.SessionToken)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

// RefreshToken rotates the session and returns a fresh token pair.
func (h *Auth) RefreshToken(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := sessionTokenFromCookie(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	pair, err := h.sessionService.Refresh(r.Context(), sessionToken)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setSessionCookie(w, pair.SessionToken)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

// Logout terminates the session behind the cookie and clears it.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := sessionTokenFromCookie(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.sessionService.Logout(r.Context(), sessionToken); err != nil {
		handleError(w, err)
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// PasswordRecovery emails a recovery code. Responds identically for known
// and unknown addresses.
func (h *Auth) PasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEmail(req.Email) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestPasswordRecovery(r.Context(), req.Email); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NewPassword consumes a recovery code and sets the new password.
func (h *Auth) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req newPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecoveryCode == "" || !validPassword(req.NewPassword) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.authService.SetNewPassword(r.Context(), req.RecoveryCode, req.NewPassword); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the profile of the authenticated user.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Email:  user.Email,
		Login:  user.Login,
		UserID: user.ID.String(),
	})
}

func (h *Auth) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Auth) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func sessionTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func deviceName(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "unknown device"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func validLogin(login string) bool {
	return len(login) >= 3 && len(login) <= 10
}

func validPassword(password string) bool {
	return len(password) >= 6 && len(password) <= 20
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
