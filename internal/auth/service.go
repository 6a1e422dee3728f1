package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/wirechat-admin/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminExists is returned when creating an admin with a taken username.
	ErrAdminExists = errors.New("admin already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides administrator authentication.
type Service struct {
	store     store.AdminStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(adminStore store.AdminStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     adminStore,
		jwtConfig: jwtConfig,
	}
}

// CreateAdmin provisions a new administrator account. Used by the CLI,
// not exposed over HTTP.
func (s *Service) CreateAdmin(ctx context.Context, username, fullName, password string) (*store.Admin, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	existing, err := s.store.GetAdminByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, ErrAdminExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.store.CreateAdmin(ctx, username, fullName, hashed)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	return admin, nil
}

// Login validates administrator credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(admin.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, admin.ID, admin.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
