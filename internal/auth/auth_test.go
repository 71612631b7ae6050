package auth

import (
	"testing"
	"time"
)

func TestPasswordEncodeVerify(t *testing.T) {
	enc := EncodePassword("password123")
	if enc == "password123" {
		t.Fatal("encoding must not be the plaintext")
	}
	if !VerifyPassword(enc, "password123") {
		t.Fatal("expected match")
	}
	if VerifyPassword(enc, "password124") {
		t.Fatal("expected mismatch")
	}
	if VerifyPassword(enc, "") {
		t.Fatal("empty password must not match")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT("user-1", "session-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "session-1" {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT("user-1", "session-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	token, err := SignJWT("user-1", "session-1", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
