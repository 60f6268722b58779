package models

import "time"

// TokenResponse is the payload returned to clients on login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	TokenID      string    `json:"token_id"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest carries a refresh token exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeTokenRequest carries a logout / token revocation.
type RevokeTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
