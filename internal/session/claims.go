package session

import (
	"github.com/golang-jwt/jwt/v4"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// DecodeClaims extracts the identity claims from a bearer credential
// without verifying its signature; verification is the auth server's
// concern, this side only reads the payload it was handed. It fails
// closed: any malformed input yields (nil, false), which callers treat
// identically to "no session".
func DecodeClaims(token string) (*domain.SessionClaims, bool) {
	if token == "" {
		return nil, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	c := &domain.SessionClaims{
		ID:        stringClaim(claims, "jti"),
		Subject:   stringClaim(claims, "sub"),
		FirstName: stringClaim(claims, "FirstName"),
		LastName:  stringClaim(claims, "LastName"),
	}
	if c.ID == "" || c.Subject == "" {
		return nil, false
	}
	return c, true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
