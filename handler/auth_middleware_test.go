// file: handler/auth_middleware_test.go

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backups-api/model"
	"backups-api/service"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	issuer := service.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute)
	mw := NewAuthMiddleware(issuer)
	user := &model.User{ID: 1, Username: "alice", Role: model.RoleUser}

	var gotUserID int
	var gotRole string
	protected := mw.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value(UserIDKey).(int)
		gotRole, _ = r.Context().Value(UserRoleKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid access token passes and populates the context", func(t *testing.T) {
		token, err := issuer.SignAccess(user)
		assert.NoError(t, err)

		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, gotUserID)
		assert.Equal(t, "user", gotRole)
	})

	// The three failure modes below must be indistinguishable to the client.
	failureBody := `{"message":"Authentication required"}`

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/logout", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, failureBody, rr.Body.String())
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "garbage")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, failureBody, rr.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		expiredIssuer := service.NewTokenIssuer("access-secret", "refresh-secret", -time.Minute)
		token, err := expiredIssuer.SignAccess(user)
		assert.NoError(t, err)

		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, failureBody, rr.Body.String())
	})

	t.Run("refresh token is not accepted on protected routes", func(t *testing.T) {
		token, err := issuer.SignRefresh(user, time.Hour)
		assert.NoError(t, err)

		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, failureBody, rr.Body.String())
	})
}
