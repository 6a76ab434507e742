package payload

import "github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type RegisterResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ActivationToken string `json:"activationToken"`
}

type ActivateRequest struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code"  validate:"required,len=4,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialAuthRequest struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Avatar  string `json:"avatar"  validate:"omitempty,url"`
	IDToken string `json:"idToken" validate:"required"`
}

// AuthResponse is returned by every call that starts or extends a session.
type AuthResponse struct {
	Success     bool        `json:"success"`
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
