package usecase

import (
	authdomain "github.com/DSaraf-Work/budget-manager-backend/internal/auth/domain"
	authdto "github.com/DSaraf-Work/budget-manager-backend/internal/auth/dto"
)

// SignupCallback runs after a new user is created (e.g. seeding defaults)
type SignupCallback func(userID string)

// AuthUsecase defines the interface for authentication operations
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
	SetSignupCallback(cb SignupCallback)
}
