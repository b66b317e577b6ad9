// Package repository declares the persistence interfaces the service
// layer programs against. The sqlite subpackage implements them; tests
// substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/messagely/internal/model"
)

// UserRepository owns user identity records and login state.
type UserRepository interface {
	// Create inserts a new user. A taken username surfaces as
	// apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error

	// Get returns the full user record (including the password hash)
	// or apperror.ErrNotFound.
	Get(ctx context.Context, username string) (*model.User, error)

	// List returns every user's public profile, ordered by username.
	List(ctx context.Context) ([]model.UserProfile, error)

	// TouchLogin sets last_login_at to now. It is the only writer of
	// that column and must be called on every successful login.
	TouchLogin(ctx context.Context, username string) error

	// MessagesFrom returns the messages a user has sent, joined with
	// each recipient's profile, ordered by sent_at.
	MessagesFrom(ctx context.Context, username string) ([]model.SentMessage, error)

	// MessagesTo returns the messages a user has received, joined with
	// each sender's profile, ordered by sent_at.
	MessagesTo(ctx context.Context, username string) ([]model.ReceivedMessage, error)
}

// MessageRepository owns message records and the read-state transition.
type MessageRepository interface {
	// Create inserts a new message with sent_at = now and read_at NULL,
	// filling in ID and SentAt. A from/to username that doesn't
	// reference an existing user surfaces as a validation error.
	Create(ctx context.Context, msg *model.Message) error

	// Get returns the message with both participants' profiles joined,
	// or apperror.ErrNotFound.
	Get(ctx context.Context, id string) (*model.MessageDetail, error)

	// MarkRead sets read_at to now if it is still NULL and returns the
	// resulting timestamp. Already-read messages keep their original
	// timestamp (idempotent no-op), so two concurrent calls both
	// succeed and converge on the same value.
	MarkRead(ctx context.Context, id string) (time.Time, error)
}
