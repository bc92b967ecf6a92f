// Package auth owns credential verification and the authorization policy.
// The same HMAC-signed JWT authenticates both the REST surface and the
// realtime websocket endpoint.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles known to the system.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// ValidRole reports whether role is one of the defined roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDoctor || role == RolePatient
}

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken signs a token for the given user. Subject carries the user id.
func IssueToken(secret string, userID uuid.UUID, role string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken validates a bearer credential and resolves it to the
// authenticated identity. Used by the HTTP middleware and by the websocket
// hub on connect.
func VerifyToken(secret, tokenStr string) (userID uuid.UUID, role string, err error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid token subject")
	}
	if !ValidRole(claims.Role) {
		return uuid.Nil, "", fmt.Errorf("invalid token role")
	}
	return userID, claims.Role, nil
}
