// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"user" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Username string `json:"user" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}
