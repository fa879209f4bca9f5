package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/jafarshop/marketorders/internal/config"
)

var (
	// ErrTokenMissing is returned when no bearer token was supplied.
	ErrTokenMissing = errors.New("auth: bearer token missing")
	// ErrTokenInvalid is returned for tokens that fail signature or claim checks.
	ErrTokenInvalid = errors.New("auth: bearer token invalid")
)

// Verifier validates access tokens issued by the identity provider (HS256, shared secret).
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	parser   *jwt.Parser
}

// NewVerifier builds a verifier from the auth configuration.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	return &Verifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   strings.TrimSpace(cfg.JWTIssuer),
		audience: strings.TrimSpace(cfg.JWTAudience),
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Verify parses the token and returns the session for its subject.
func (v *Verifier) Verify(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrTokenMissing
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return Session{}, fmt.Errorf("%w: audience mismatch", ErrTokenInvalid)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return Session{}, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("%w: subject is not a user id", ErrTokenInvalid)
	}

	return Session{UserID: userID}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
