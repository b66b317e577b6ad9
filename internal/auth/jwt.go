// Package auth provides session token issuance and password hashing.
//
// SESSION MODEL:
// The server keeps no session state. A login (or registration) issues a
// signed JWT whose Subject claim is the username; every authenticated
// request carries it as a bearer token, and the server re-derives the
// identity from the signature alone — no database lookup, no session
// table, no revocation list. The signing secret is the whole trust root.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"alice","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "messagely"

// DefaultTokenTTL is the token lifetime used when none is configured.
// The original design never expired tokens; bounding their life is a
// deliberate hardening. 24h keeps a messaging client logged in for a
// working day without re-authenticating on every app open.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and verifies session tokens.
//
// It holds the HMAC secret used to sign and verify — the same secret for
// both, so every server instance must share it. Purely functional over
// the secret: no state, no side effects.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (JWT_SECRET=$(openssl rand -hex 32)); anything under 16
// characters is rejected outright. A zero ttl means DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The registered "sub" (Subject) claim holds
// the username — the entire identity the token needs to carry.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given username.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for
// a deployment where all verifiers share the secret.
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Resolve parses and verifies a token string, returning the username it
// was issued for.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (token wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (tokens from other apps sharing a secret are rejected)
//   - Algorithm is HS256 — jwt.WithValidMethods prevents algorithm
//     confusion attacks where an attacker submits an unsigned "none" token
func (s *TokenService) Resolve(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
