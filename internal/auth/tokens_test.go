package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
)

const testKeyHex = "101112131415161718191a1b1c1d1e1f202122232425262728292a2b2c2d2e2f"

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-abc123",
		Email: "alice@example.com",
		Name:  "Alice",
	}
}

func TestSessionTokenRoundtrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := svc.GenerateSessionToken(testUser())
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if !strings.HasPrefix(token, "v4.local.") {
		t.Errorf("expected a v4.local token, got %q", token[:min(len(token), 12)])
	}

	claims, err := svc.VerifySessionToken(token)
	if err != nil {
		t.Fatalf("VerifySessionToken: %v", err)
	}
	if claims.UserID != "user-abc123" {
		t.Errorf("UserID = %q, want user-abc123", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.Subject != "user-abc123" {
		t.Errorf("Subject = %q, want user-abc123", claims.Subject)
	}
}

func TestNewTokenService_BadKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"too short", "abcdef"},
		{"too long", testKeyHex + "00"},
		{"not hex", strings.Repeat("z", 64)},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.key, time.Hour); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVerifySessionToken_WrongKey(t *testing.T) {
	svc1, err := NewTokenService(testKeyHex, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	svc2, err := NewTokenService("ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := svc1.GenerateSessionToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc2.VerifySessionToken(token); err == nil {
		t.Error("token minted with a different key must not verify")
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	token, err := svc.GenerateSessionToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.VerifySessionToken(token); err == nil {
		t.Error("expired token must not verify")
	}
}

func TestVerifySessionToken_Garbage(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	for _, token := range []string{"", "garbage", "v4.local.AAAA"} {
		if _, err := svc.VerifySessionToken(token); err == nil {
			t.Errorf("token %q must not verify", token)
		}
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	if a == b {
		t.Error("states must be unique")
	}
	if len(a) < 16 {
		t.Errorf("state too short: %q", a)
	}
}
