package auth

// LoginInput represents the request body for user authentication.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}
