package dto

import "github.com/acesped/portal/internal/app/models"

// StaffLoginRequest represents staff login credentials
type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StudentLoginRequest represents student login credentials
type StudentLoginRequest struct {
	MatricNumber string `json:"matricNumber" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// PrincipalResponse is the signed-in identity.
type PrincipalResponse struct {
	ID    int64       `json:"id"`
	Kind  string      `json:"kind"`
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token     TokenResponse     `json:"token"`
	Principal PrincipalResponse `json:"principal"`
}

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Role      string `json:"role" binding:"required"`
}
