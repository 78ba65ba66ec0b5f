// file: model/response.go

package model

import "time"

// UserData is the identity claim set returned to the client alongside tokens.
type UserData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SessionData is what the auth service hands back on login and rotation.
// RefreshToken and RefreshTTL travel in the httpOnly cookie, never in the body.
type SessionData struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
	User         UserData
}

// SessionResponse is the JSON body for /login and /refreshToken.
type SessionResponse struct {
	AccessToken string   `json:"accessToken"`
	UserData    UserData `json:"userData"`
}

// MessageResponse is a generic one-line JSON reply.
type MessageResponse struct {
	Message string `json:"message"`
}
