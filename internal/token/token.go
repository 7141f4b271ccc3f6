// Package token signs and parses session tokens. A token encodes the
// pair (user id, session id); whether the session is still active is
// the store's business, not the token's.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int `json:"auth_user_id"`
	SessionID int `json:"session_id"`
}

// Signer mints and validates HS256 session tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Mint signs a token for the given user and session.
func (s *Signer) Mint(userID, sessionID int) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID,
		SessionID: sessionID,
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and returns the embedded claims.
func (s *Signer) Parse(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, fmt.Errorf("token is empty")
	}

	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}
	return *claims, nil
}
