package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	return NewService(Config{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
		BCryptCost:    bcrypt.MinCost,
	})
}

// TestPasswordHashing tests bcrypt hashing and comparison.
func TestPasswordHashing(t *testing.T) {
	s := newTestService()

	hash, err := s.HashPassword("cleared-to-land")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "cleared-to-land" {
		t.Error("Expected hash to differ from plaintext")
	}
	if err := s.ComparePassword(hash, "cleared-to-land"); err != nil {
		t.Errorf("Expected matching password, got: %v", err)
	}
	if err := s.ComparePassword(hash, "go-around"); err == nil {
		t.Error("Expected mismatch for wrong password")
	}
}

// TestTokenRoundTrip tests token generation and validation.
func TestTokenRoundTrip(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateToken(7, "pic", RolePilot)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "pic" || claims.Role != RolePilot {
		t.Errorf("Unexpected claims %+v", claims)
	}
	if claims.Issuer != Issuer {
		t.Errorf("Expected issuer %s, got %s", Issuer, claims.Issuer)
	}
}

// TestTokenRejected tests tampered and expired tokens.
func TestTokenRejected(t *testing.T) {
	s := newTestService()

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewService(Config{JWTSecret: "other-secret"})
		token, _ := other.GenerateToken(1, "admin", RoleAdmin)
		if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewService(Config{JWTSecret: "test-secret", TokenDuration: -time.Minute})
		token, _ := expired.GenerateToken(1, "admin", RoleAdmin)
		if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := s.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

// TestRoles tests the role hierarchy and permission helpers.
func TestRoles(t *testing.T) {
	tests := []struct {
		role      string
		calculate bool
		history   bool
		reload    bool
	}{
		{RoleAdmin, true, true, true},
		{RolePilot, true, true, false},
		{RoleViewer, true, false, false},
		{"guest", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := CanCalculate(tt.role); got != tt.calculate {
				t.Errorf("CanCalculate: expected %v, got %v", tt.calculate, got)
			}
			if got := CanStoreHistory(tt.role); got != tt.history {
				t.Errorf("CanStoreHistory: expected %v, got %v", tt.history, got)
			}
			if got := CanReloadTables(tt.role); got != tt.reload {
				t.Errorf("CanReloadTables: expected %v, got %v", tt.reload, got)
			}
		})
	}

	if !ValidRole(RoleViewer) || ValidRole("observer") {
		t.Error("Unexpected ValidRole result")
	}
}
