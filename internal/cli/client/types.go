package client

// User is the account returned by the auth and user endpoints
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by both login and registration
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest carries the fields to change; nil fields are left alone
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}
