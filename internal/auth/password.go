// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow, and that
// slowness is the security feature: it makes brute-force attacks
// expensive. It also generates a random salt per hash and embeds it in
// the output, so two users with the same password get different hashes
// and no separate salt column is needed.
//
// The cost parameter (the "work factor") controls how slow: each +1
// doubles the work. Tune it so hashing takes ~200-300ms on production
// hardware; inject a low cost in tests so they stay fast.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Cost 12 takes roughly ~250ms on a modern server — negligible for a
// login, brutal for an attacker.
const DefaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the work factor is injected at
// construction rather than hardcoded per call site — production wires
// the configured cost, tests wire bcrypt.MinCost.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given work
// factor. A cost below bcrypt's minimum (including 0 from an unset
// config) falls back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's
// minimum cost. Hashing at cost 12 takes ~250ms per call, which adds up
// fast in test suites. Do not use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is self-contained (version, cost, salt, hash) and is what
// gets stored in the users table. Returns an error for passwords over
// 72 bytes — bcrypt silently truncates beyond that, so we reject
// explicitly rather than surprise the caller.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt
// hash. Returns nil on match, a non-nil error otherwise.
//
// A wrong password and a malformed stored hash both come back as an
// error, never a panic — callers treat any failure as "authentication
// failed". bcrypt's comparison is constant-time internally, so response
// timing doesn't reveal how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
