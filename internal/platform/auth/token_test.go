package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerifyToken(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := IssueToken(secret, userID, RoleDoctor, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	gotID, gotRole, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if gotID != userID {
		t.Errorf("user id = %s, want %s", gotID, userID)
	}
	if gotRole != RoleDoctor {
		t.Errorf("role = %q, want %q", gotRole, RoleDoctor)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", uuid.New(), RolePatient, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if _, _, err := VerifyToken("secret-b", token); err == nil {
		t.Fatal("VerifyToken should reject a token signed with a different secret")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken("secret", uuid.New(), RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if _, _, err := VerifyToken("secret", token); err == nil {
		t.Fatal("VerifyToken should reject an expired token")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, _, err := VerifyToken("secret", "not-a-token"); err == nil {
		t.Fatal("VerifyToken should reject malformed input")
	}
}
