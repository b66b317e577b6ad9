package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/service"
)

// AuthHandler serves registration and login. Both respond with a
// session token — registering logs you in.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// Body: {username, password, first_name, last_name, phone}
// Response: 201 {token, user}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: result.Token, User: result.User})
}

// HandleLogin authenticates a username/password pair.
//
// HTTP: POST /auth/login
// Body: {username, password}
// Response: 200 {token, user}; 401 on bad credentials (the same 401
// whether the user is unknown or the password is wrong).
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: result.Token, User: result.User})
}
