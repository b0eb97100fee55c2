package user

import "github.com/FACorreiaa/go-user-management/internal/types"

// CreateUserRequest represents the create user request body
type CreateUserRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role"`
}

// UpdateUserRequest represents the update user request body.
// Absent or empty fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}
