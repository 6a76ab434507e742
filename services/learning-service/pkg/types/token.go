package types

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the claims of access and refresh tokens.
type JWTClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// PendingUser is a registration that has not been confirmed yet.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// ActivationClaims are the claims of an activation token.
type ActivationClaims struct {
	User           PendingUser `json:"user"`
	ActivationCode string      `json:"activationCode"`
	jwt.RegisteredClaims
}

// Tokens is an access and refresh token pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}
