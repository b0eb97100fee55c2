package types

// Role is the closed set of roles a user account can hold.
// Only RoleAdmin may create new accounts.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RoleParent    Role = "parent"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a stored user record.
type User struct {
	ID           int    `json:"id" example:"1"`                       // Sequential positive identifier, never reused.
	Username     string `json:"username" example:"johndoe"`           // Display name, mutable.
	Email        string `json:"email" example:"john.doe@example.com"` // Unique across live records at creation time.
	PasswordHash string `json:"-"`                                    // Hashed password (never exposed).
	Role         Role   `json:"role" example:"student"`               // Immutable after creation.
}

// UserPayload is the caller-asserted identity claim attached to a request.
// It lives only for the duration of one request and is never persisted.
type UserPayload struct {
	ID    int    `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// UpdateUserParams defines the fields allowed for user updates.
// Pointers distinguish "not provided" from an empty value.
type UpdateUserParams struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UserResponse wraps a user record in the envelope the API returns.
type UserResponse struct {
	User *User `json:"user"`
}

// MessageResponse is the body for plain status/error messages.
type MessageResponse struct {
	Message string `json:"message"`
}
