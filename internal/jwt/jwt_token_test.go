package jwt

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "feed-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken(987654, RoleOps, testSecret, time.Now().Add(time.Minute).Unix())
	if err != nil {
		t.Fatal(err)
	}

	id, err := ParseToken(token, RoleOps, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if id != 987654 {
		t.Fatalf("identity mismatch: got %d", id)
	}
}

func TestCreateTokenRequiresSecret(t *testing.T) {
	if _, err := CreateToken(1, RoleOps, "", 0); err == nil {
		t.Fatal("empty secret must be rejected")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := CreateToken(5, RoleOps, testSecret, time.Now().Add(time.Minute).Unix())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(token, RoleOps, "other-secret"); err == nil {
		t.Fatal("wrong secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := CreateToken(5, RoleOps, testSecret, time.Now().Add(-time.Minute).Unix())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(token, RoleOps, testSecret); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestParseTokenRejectsTamperedRoleChar(t *testing.T) {
	token, err := CreateToken(5, RoleOps, testSecret, time.Now().Add(time.Minute).Unix())
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.TrimSuffix(token, "1") + "9"
	if _, err := ParseToken(tampered, RoleOps, testSecret); err == nil {
		t.Fatal("tampered role char must be rejected")
	}
	if _, err := ParseToken("", RoleOps, testSecret); err == nil {
		t.Fatal("empty token must be rejected")
	}
}
