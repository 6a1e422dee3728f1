package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-admin/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewService(st, &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})
}

func TestCreateAdminValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"short username", "ab", "password123", ErrInvalidUsername},
		{"short password", "root", "12345", ErrInvalidPassword},
		{"valid", "root", "password123", nil},
		{"duplicate", "root", "password123", ErrAdminExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAdmin(ctx, tt.username, "Root Admin", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateAdmin(%q) error = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "root", "Root Admin", "password123")
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	token, err := svc.Login(ctx, "root", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateAdmin(ctx, "root", "Root Admin", "password123"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	if _, err := svc.Login(ctx, "root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "ghost", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown admin error = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	other := &JWTConfig{
		Secret:   []byte("other-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	token, err := GenerateToken(other, 1, "root")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	svc := newTestService(t)
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for a token signed with another secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      -time.Minute,
	}
	token, err := GenerateToken(cfg, 1, "root")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}
