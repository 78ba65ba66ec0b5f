package model

import "github.com/golang-jwt/jwt/v5"

// TokenKind selects which signing secret a token is verified against.
// Access and refresh tokens use independent secrets so that compromising
// one class does not compromise the other.
type TokenKind string

const (
	AccessTokenKind  TokenKind = "access"
	RefreshTokenKind TokenKind = "refresh"
)

// AppClaims is the fixed identity payload embedded in every signed token.
// All three custom fields are mandatory; tokens with missing or unknown
// payload fields are rejected at verification.
type AppClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
