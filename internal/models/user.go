package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	GoogleID     string     `json:"-"`
	AuthProvider string     `json:"authProvider"`
	IsVerified   bool       `json:"isVerified"`
	Role         string     `json:"role"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GoogleIdentity is what a verified Google ID token tells us about the caller.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type SignUpRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AdminCode string `json:"adminCode"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleAuthRequest struct {
	Token     string `json:"token"`
	AdminCode string `json:"adminCode"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
