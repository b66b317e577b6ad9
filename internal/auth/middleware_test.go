package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// echoHandler writes the username it finds in the context, so tests can
// see what the middleware stored.
func echoHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := UsernameFromContext(r.Context())
		if !ok {
			t.Error("handler reached without username in context")
		}
		w.Write([]byte(username))
	})
}

func TestRequireAuth_ValidBearer(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	RequireAuth(ts)(echoHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "alice" {
		t.Errorf("context username = %q, want %q", got, "alice")
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic YWxpY2U6cHc="},
		{name: "bearer without token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			RequireAuth(ts)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if called {
				t.Error("next handler was called despite invalid auth")
			}
		})
	}
}

func TestUsernameFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if username, ok := UsernameFromContext(req.Context()); ok || username != "" {
		t.Errorf("UsernameFromContext on bare context = (%q, %v), want (\"\", false)", username, ok)
	}
}
