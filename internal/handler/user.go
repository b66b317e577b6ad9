package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// UserHandler serves the user directory and per-user message listings.
// All routes sit behind RequireAuth.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every user's public profile.
//
// HTTP: GET /api/users
// Response: 200 {users: [{username, first_name, last_name, phone}, ...]}
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.UserProfile{"users": users})
}

// HandleGet returns one user's detail.
//
// HTTP: GET /api/users/{username}
// Response: 200 {user: {username, first_name, last_name, phone,
// join_at, last_login_at}}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// HandleMessagesTo lists the messages sent to a user.
//
// HTTP: GET /api/users/{username}/to
// Response: 200 {messages: [{id, body, sent_at, read_at, from_user}, ...]}
func (h *UserHandler) HandleMessagesTo(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	messages, err := h.users.MessagesTo(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.ReceivedMessage{"messages": messages})
}

// HandleMessagesFrom lists the messages sent by a user.
//
// HTTP: GET /api/users/{username}/from
// Response: 200 {messages: [{id, body, sent_at, read_at, to_user}, ...]}
func (h *UserHandler) HandleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	messages, err := h.users.MessagesFrom(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.SentMessage{"messages": messages})
}
