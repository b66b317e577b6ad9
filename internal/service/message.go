package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

const MaxBodyLength = 10000

// MessageService handles sending, reading, and marking messages.
//
// Every message-targeted operation follows the same two-step shape:
// fetch the message (existence first), then ask the AccessGuard whether
// the actor may touch it (ownership second).
type MessageService struct {
	messages repository.MessageRepository
	guard    AccessGuard
	logger   *slog.Logger
}

func NewMessageService(messages repository.MessageRepository, logger *slog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		logger:   logger,
	}
}

// Send creates a message from the authenticated actor to another user.
//
// The sender is always the actor — it comes from the resolved token,
// never from the request body, so a caller cannot send as someone else.
// Sending to yourself is allowed; the data model has never forbidden it
// and a self-note is harmless.
func (s *MessageService) Send(ctx context.Context, actor, toUsername, body string) (*model.Message, error) {
	toUsername = strings.TrimSpace(toUsername)
	if toUsername == "" {
		return nil, apperror.ValidationFailed("to_username", "recipient is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperror.ValidationFailed("body", "message body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("message body must be %d characters or less", MaxBodyLength))
	}

	msg := &model.Message{
		FromUsername: actor,
		ToUsername:   toUsername,
		Body:         body,
	}

	// The repository fills in ID and SentAt, and turns an unknown
	// recipient (foreign key violation) into a validation error.
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("sending message from %s to %s: %w", actor, toUsername, err)
	}

	s.logger.Info("message sent",
		slog.String("id", msg.ID),
		slog.String("from", msg.FromUsername),
		slog.String("to", msg.ToUsername),
	)

	return msg, nil
}

// Get returns the full message detail if the actor is a participant.
//
// Existence is checked before ownership: an unknown id is NotFound for
// every caller, a known id the actor isn't party to is Forbidden.
func (s *MessageService) Get(ctx context.Context, actor, id string) (*model.MessageDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message id is required")
	}

	msg, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanView(actor, msg) {
		return nil, apperror.Forbidden("you are not a participant in this message")
	}

	return msg, nil
}

// ReadReceipt is the result of marking a message read.
type ReadReceipt struct {
	ID     string    `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// MarkRead records that the recipient has read the message.
//
// Same ordering as Get: NotFound before Forbidden. Only the recipient
// may mark a message read — the sender gets Forbidden even though they
// can view it. Re-marking an already-read message is a no-op returning
// the original timestamp, so concurrent duplicate calls both succeed
// and agree.
func (s *MessageService) MarkRead(ctx context.Context, actor, id string) (*ReadReceipt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message id is required")
	}

	msg, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMarkRead(actor, msg) {
		return nil, apperror.Forbidden("only the recipient can mark a message read")
	}

	readAt, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("marking message %s read: %w", id, err)
	}

	s.logger.Info("message read",
		slog.String("id", id),
		slog.String("by", actor),
	)

	return &ReadReceipt{ID: id, ReadAt: readAt}, nil
}
