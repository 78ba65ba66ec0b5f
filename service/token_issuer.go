// file: service/token_issuer.go

package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backups-api/logger"
	"backups-api/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies access and refresh tokens. The two classes
// use independent secrets, so a wrong-kind token fails signature
// verification the same way a forged one does.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
	}
}

// AccessTTL returns the fixed lifetime used for access tokens.
func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// SignAccess issues a short-lived access token for the given user.
func (i *TokenIssuer) SignAccess(user *model.User) (string, error) {
	return i.sign(user, i.accessSecret, i.accessTTL)
}

// SignRefresh issues a refresh token with a caller-supplied TTL. The rotation
// path passes the time remaining until the absolute session expiry, so each
// successive token's own life narrows toward the same fixed ceiling.
func (i *TokenIssuer) SignRefresh(user *model.User, ttl time.Duration) (string, error) {
	return i.sign(user, i.refreshSecret, ttl)
}

func (i *TokenIssuer) sign(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.AppClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// Verify checks a token against the secret for the given kind and returns its
// claims, or nil on any failure: bad signature, expiry, wrong kind, non-HMAC
// algorithm, or a payload that is missing required fields or carries unknown
// ones. Callers cannot distinguish the failure causes, so neither can a
// client probing for an oracle.
func (i *TokenIssuer) Verify(tokenString string, kind model.TokenKind) *model.AppClaims {
	secret := i.accessSecret
	if kind == model.RefreshTokenKind {
		secret = i.refreshSecret
	}

	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil
	}

	if claims.UserID <= 0 || claims.Username == "" || claims.Role == "" {
		return nil
	}
	if !payloadKeysAllowed(tokenString) {
		return nil
	}

	return claims
}

var allowedClaimKeys = map[string]struct{}{
	"user_id":  {},
	"username": {},
	"role":     {},
	"exp":      {},
	"iat":      {},
}

// payloadKeysAllowed rejects tokens whose payload carries fields outside the
// fixed claim set. Missing fields are caught by the zero-value checks above.
func payloadKeysAllowed(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return false
	}
	for key := range fields {
		if _, ok := allowedClaimKeys[key]; !ok {
			return false
		}
	}
	return true
}
