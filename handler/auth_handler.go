package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"backups-api/common"
	"backups-api/model"
	"backups-api/service"

	"github.com/lib/pq"
)

const refreshCookieName = "refreshToken"

// IAuthService is the session lifecycle contract consumed by the handler.
type IAuthService interface {
	Register(req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.SessionData, error)
	RefreshSession(rawToken string) (*model.SessionData, error)
	Logout(userID int) error
}

type AuthHandler struct {
	service    IAuthService
	limiter    *service.LoginLimiter
	production bool
}

func NewAuthHandler(svc IAuthService, limiter *service.LoginLimiter, production bool) *AuthHandler {
	return &AuthHandler{
		service:    svc,
		limiter:    limiter,
		production: production,
	}
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "New user"
// @Success      201 {object} model.User
// @Failure      400 {object} common.AppError
// @Failure      409 {object} common.AppError
// @Router       /register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.service.Register(req)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return common.NewAppError(http.StatusConflict, "Username already taken", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Login godoc
// @Summary      Authenticate and start a session
// @Description  Returns an access token and sets the refreshToken cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Credentials"
// @Success      200 {object} model.SessionResponse
// @Failure      400 {object} common.AppError
// @Failure      401 {object} common.AppError
// @Failure      409 {object} common.AppError
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if h.limiter != nil && !h.limiter.Allow(r.Context(), req.Username) {
		return common.NewAppError(http.StatusTooManyRequests, "Too many login attempts, try again later", nil)
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusUnauthorized, "Credentials don't exist", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
		case errors.Is(err, service.ErrSessionActive):
			return common.NewAppError(http.StatusConflict, "An active session already exists for this user", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not process login", err)
		}
	}

	if h.limiter != nil {
		h.limiter.Reset(r.Context(), req.Username)
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshTTL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.SessionResponse{
		AccessToken: session.AccessToken,
		UserData:    session.User,
	})
	return nil
}

// RefreshToken godoc
// @Summary      Rotate the refresh token
// @Description  Exchanges the refreshToken cookie for a new access+refresh pair.
// @Tags         auth
// @Produce      json
// @Success      200 {object} model.SessionResponse
// @Failure      401 {object} common.AppError
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /refreshToken [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return common.NewAppError(http.StatusUnauthorized, "Refresh token cookie is missing", nil)
	}

	session, err := h.service.RefreshSession(cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			return common.NewAppError(http.StatusForbidden, "Invalid refresh token", nil)
		case errors.Is(err, service.ErrSessionExpired):
			return common.NewAppError(http.StatusForbidden, "Session expired", nil)
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		case errors.Is(err, service.ErrSessionNotFound):
			return common.NewAppError(http.StatusNotFound, "Session not found", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not refresh session", err)
		}
	}

	h.setRefreshCookie(w, session.RefreshToken, session.RefreshTTL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.SessionResponse{
		AccessToken: session.AccessToken,
		UserData:    session.User,
	})
	return nil
}

// Logout godoc
// @Summary      End the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.MessageResponse
// @Failure      401 {object} common.AppError
// @Failure      500 {object} common.AppError
// @Router       /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	// The id comes from the validated token context, never from the body.
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	if err := h.service.Logout(userID); err != nil {
		// Cookie deliberately left in place: the next rotation attempt
		// fails closed once the record is actually gone.
		return common.NewAppError(http.StatusInternalServerError, "Could not complete logout", err)
	}

	if _, err := r.Cookie(refreshCookieName); err == nil {
		h.clearRefreshCookie(w)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.MessageResponse{Message: "Logout successful"})
	return nil
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(ttl.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}
