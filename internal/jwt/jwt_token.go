// Package jwt mints and verifies the short-lived access tokens that guard
// the ops event feed. A token is issued to an administrator on demand and
// checked once at the websocket handshake.
package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

type Role int

const (
	RoleOps Role = iota
)

const AccessTokenTTL = 15 * time.Minute

func appendRoleChar(token string, role Role) string {
	switch role {
	case RoleOps:
		return token + "1"
	}
	return token
}

func expectedRoleChar(role Role) string {
	switch role {
	case RoleOps:
		return "1"
	}
	return ""
}

// CreateToken signs an ops-feed token for the given administrator identity.
func CreateToken(adminID int64, role Role, secret string, validUntil int64) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: empty secret")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(AccessTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"id":  strconv.FormatInt(adminID, 10),
		"exp": validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return appendRoleChar(tokenString, role), nil
}

// ParseToken validates the role char and signature and returns the
// administrator identity the token was minted for.
func ParseToken(tokenString string, role Role, secret string) (int64, error) {
	if len(tokenString) == 0 {
		return 0, fmt.Errorf("jwt: token string is empty")
	}

	if tokenString[len(tokenString)-1:] != expectedRoleChar(role) {
		return 0, fmt.Errorf("jwt: invalid role character in token")
	}
	tokenString = tokenString[:len(tokenString)-1]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("jwt: unauthorized: %v", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("jwt: token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("jwt: claims of unexpected type")
	}

	raw, _ := claims["id"].(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("jwt: token missing identity")
	}

	return id, nil
}
