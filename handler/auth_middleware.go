package handler

import (
	"context"
	"net/http"
	"strings"

	"backups-api/common"
	"backups-api/model"
	"backups-api/service"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UsernameKey contextKey = "username"
	UserRoleKey contextKey = "userRole"
)

// AuthMiddleware gates protected endpoints on a valid access token. The
// issuer is injected at construction instead of read from ambient config.
type AuthMiddleware struct {
	issuer *service.TokenIssuer
}

func NewAuthMiddleware(issuer *service.TokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// Handle verifies the Bearer access token and attaches the identity claims
// to the request context. Every failure mode gets the same 401 body so the
// response does not disclose whether the token was absent, malformed or
// expired.
func (m *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w)
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			unauthorized(w)
			return
		}

		claims := m.issuer.Verify(headerParts[1], model.AccessTokenKind)
		if claims == nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	err := common.NewAppError(http.StatusUnauthorized, "Authentication required", nil)
	err.Send(w)
}
