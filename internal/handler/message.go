package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// MessageHandler serves sending, reading, and marking messages. The
// acting identity always comes from the validated token in the request
// context — never from the request body or URL.
type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type sendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// HandleSend creates a new message from the caller.
//
// HTTP: POST /api/messages
// Body: {to_username, body}
// Response: 201 {message: {id, from_username, to_username, body,
// sent_at, read_at}}
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.messages.Send(r.Context(), actor, req.ToUsername, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]*model.Message{"message": msg})
}

// HandleGet returns a message's detail to its sender or recipient.
//
// HTTP: GET /api/messages/{id}
// Response: 200 {message: {id, body, sent_at, read_at, from_user,
// to_user}}; 404 for an unknown id, 403 for a non-participant.
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	msg, err := h.messages.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.MessageDetail{"message": msg})
}

// HandleMarkRead marks a message read on behalf of its recipient.
//
// HTTP: POST /api/messages/{id}/read
// Response: 200 {message: {id, read_at}}; 403 for anyone but the
// recipient, including the sender.
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	receipt, err := h.messages.MarkRead(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*service.ReadReceipt{"message": receipt})
}
