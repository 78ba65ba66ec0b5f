// file: model/token.go

package model

import "time"

// RefreshToken is the server-side refresh record. There is at most one row
// per user; rotation overwrites Token but leaves ExpiresAt untouched.
// ExpiresAt is the absolute ceiling of the whole session, fixed at login.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // the signed value is not exposed in JSON responses
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
