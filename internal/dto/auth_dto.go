package dto

import (
	"time"

	"github.com/google/uuid"
)

type GoogleAuthRequest struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID             uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}

type AdminResponse struct {
	ID       uuid.UUID `json:"admin_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type AuthResponse struct {
	TokenType    string         `json:"token_type"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"refresh_expires_at"`
	User         *UserResponse  `json:"user,omitempty"`
	Admin        *AdminResponse `json:"admin,omitempty"`
}

type TokenPairResponse struct {
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"refresh_expires_at"`
}
