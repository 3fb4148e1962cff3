package auth

// LoginRequest represents login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,username"`
	FirstName       string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName        string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// GoogleLoginRequest exchanges a Google id token for a backend token
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// TokenResponse is what every login flavour returns
type TokenResponse struct {
	Key string `json:"key"`
}

// RegisterResponse represents the created account
type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Key      string `json:"key,omitempty"`
}
