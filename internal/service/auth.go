// Package service contains the business logic layer: it validates,
// enforces the access rules, and orchestrates repositories and the auth
// primitives. Handlers stay HTTP-only, repositories stay SQL-only.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

const (
	MaxUsernameLength = 50
	MaxNameLength     = 100
	MaxPhoneLength    = 30
)

// invalidCredentials is the one message every login failure returns.
// Whether the username doesn't exist or the password is wrong, the
// caller sees the same thing — revealing which would let an attacker
// enumerate accounts.
const invalidCredentials = "invalid username or password"

// AuthService handles registration and login.
//
// It is the only component that touches password hashes: it writes them
// at registration via PasswordService.Hash and checks them at login via
// PasswordService.Verify. Nothing above this layer ever sees a hash.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthResult bundles the issued token with the user's public profile so
// the handler can respond in one step.
type AuthResult struct {
	Token string
	User  model.UserProfile
}

// Register creates a new account and logs it in.
//
// The password is hashed before anything is stored; join_at and
// last_login_at are both set by the repository at insert time.
// Registering counts as a login, so the response carries a token —
// clients go straight to authenticated calls without a second request.
//
// A taken username comes back as apperror.ErrConflict, propagated from
// the store's uniqueness constraint.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(in.Username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if in.Password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	// bcrypt silently truncates past 72 bytes, so over-length passwords
	// are rejected here with the other input checks.
	if len(in.Password) > 72 {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}
	if len(in.FirstName) > MaxNameLength || len(in.LastName) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("names must be %d characters or less", MaxNameLength))
	}
	if len(in.Phone) > MaxPhoneLength {
		return nil, apperror.ValidationFailed("phone",
			fmt.Sprintf("phone must be %d characters or less", MaxPhoneLength))
	}

	// Length was validated above, so any failure here is bcrypt itself
	// breaking — an internal error, not the caller's fault.
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password for %s: %w", in.Username, err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user %s: %w", in.Username, err)
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", user.Username, err)
	}

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// Login verifies credentials, updates last_login_at, and issues a token.
//
// Every failure path returns the same generic unauthenticated error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "username and password are required")
	}

	if !s.Authenticate(ctx, username, password) {
		s.logger.Info("login rejected", slog.String("username", username))
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	if err := s.users.TouchLogin(ctx, username); err != nil {
		return nil, fmt.Errorf("updating last login for %s: %w", username, err)
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s after login: %w", username, err)
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// Authenticate reports whether the username/password pair is valid.
//
// An unknown user is false, not an error — the distinction between
// "no such user" and "wrong password" stops here and never reaches a
// caller. Store failures are also false: a malformed hash or a broken
// lookup means we cannot vouch for the credentials, so we don't.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) bool {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return false
	}

	return s.passwords.Verify(user.PasswordHash, password) == nil
}

// ResolveToken validates a session token and returns the username it
// carries. Used by the auth middleware on every authenticated request.
func (s *AuthService) ResolveToken(tokenStr string) (string, error) {
	username, err := s.tokens.Resolve(tokenStr)
	if err != nil {
		return "", apperror.Unauthenticated("invalid or expired token")
	}
	return username, nil
}
