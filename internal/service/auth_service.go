package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"qr-trackr-be/internal/jwt"
	"qr-trackr-be/internal/models"
)

// ErrInvalidCredentials is returned for any failed login attempt.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService authenticates the single admin principal configured for the
// service. Finer-grained authorization is the host system's concern.
type AuthService interface {
	Login(req *models.LoginRequest) (*models.AuthResponse, error)
}

type authService struct {
	adminEmail        string
	adminPasswordHash string
	jwtService        *jwt.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(adminEmail, adminPasswordHash string, jwtService *jwt.JWTService) AuthService {
	return &authService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtService:        jwtService,
	}
}

// Login verifies the admin credentials and returns a JWT token
func (s *authService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email != s.adminEmail {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		Email: req.Email,
		Token: token,
	}, nil
}
