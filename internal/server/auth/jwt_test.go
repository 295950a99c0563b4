package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/anveshm/vidtube/internal/common"
	"github.com/anveshm/vidtube/internal/server/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "user-123",
		Email:    "ann@x.com",
		Username: "annlee",
		FullName: "Ann Lee",
	}
}

func TestAccessToken_GenerateAndParse(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	user := testUser()

	tok, err := GenerateAccessToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("user ID mismatch: got %q want %q", claims.UserID, user.ID)
	}
	if claims.Email != user.Email || claims.Username != user.Username || claims.FullName != user.FullName {
		t.Fatalf("identity claims mismatch: %+v", claims)
	}
}

func TestRefreshToken_GenerateAndParse(t *testing.T) {
	t.Parallel()

	secret := []byte("refresh-secret")

	tok, err := GenerateRefreshToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	userID, err := GetUserIDFromRefreshToken(tok, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromRefreshToken error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "u1")
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateRefreshToken("u1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	_, err = GetUserIDFromRefreshToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestRefreshToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateRefreshToken("u2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	_, err = GetUserIDFromRefreshToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestAccessToken_NotValidAsRefreshSecret(t *testing.T) {
	t.Parallel()

	// the two token types are signed with distinct secrets; a token signed
	// with one must not verify under the other
	user := testUser()
	tok, err := GenerateAccessToken(user, []byte("access-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = GetUserIDFromRefreshToken(tok, []byte("refresh-secret"))
	if err == nil {
		t.Fatalf("expected error when verifying with the wrong secret, got nil")
	}
}

func TestParseAccessToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseAccessToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestRefreshToken_UniquePerMint(t *testing.T) {
	t.Parallel()

	secret := []byte("refresh-secret")

	first, err := GenerateRefreshToken("user-123", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	second, err := GenerateRefreshToken("user-123", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	// iat/exp only have one-second resolution; the jti claim must keep
	// back-to-back tokens distinct or rotation degenerates into a no-op
	if first == second {
		t.Fatalf("two refresh tokens minted back-to-back are identical")
	}
}

func TestAccessToken_UniquePerMint(t *testing.T) {
	t.Parallel()

	secret := []byte("access-secret")
	user := testUser()

	first, err := GenerateAccessToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	second, err := GenerateAccessToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if first == second {
		t.Fatalf("two access tokens minted back-to-back are identical")
	}
}
