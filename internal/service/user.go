package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// UserService exposes user profiles and per-user message listings.
// All of its operations require an authenticated caller, but any
// authenticated user may look at any profile — visibility rules apply
// to messages, not to the directory.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// Get returns a single user's full record, or NotFound. The model's
// json:"-" tag on the password hash keeps it out of any serialization;
// join_at and last_login_at are part of the detail view.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// List returns every user's public profile.
func (s *UserService) List(ctx context.Context) ([]model.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// MessagesTo returns the messages sent to the given user, each with the
// sender's profile joined in.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]model.ReceivedMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	messages, err := s.users.MessagesTo(ctx, username)
	if err != nil {
		s.logger.Error("failed to list received messages",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing messages to %s: %w", username, err)
	}

	return messages, nil
}

// MessagesFrom returns the messages sent by the given user, each with
// the recipient's profile joined in.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]model.SentMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	messages, err := s.users.MessagesFrom(ctx, username)
	if err != nil {
		s.logger.Error("failed to list sent messages",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing messages from %s: %w", username, err)
	}

	return messages, nil
}
