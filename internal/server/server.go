// Package server wires the dependency graph and owns the HTTP server
// lifecycle. This is the composition root: main.go hands it a Config,
// and everything — database, services, handlers, routes — is assembled
// here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/handler"
	"github.com/sakif/messagely/internal/middleware"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

// Config holds everything the server needs at startup. The signing
// secret and bcrypt cost are injected into the auth services from here
// — no package-level globals, so tests construct their own fixtures.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration // zero means auth.DefaultTokenTTL
	BcryptCost int           // zero means auth.DefaultCost
}

// Server owns the router and the database connection. The connection
// is closed during graceful shutdown to flush the WAL.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain:
//
//	sqlite.DB → AuthService/UserService/MessageService → handlers → routes
//
// Each layer receives only what it needs: services get repository
// interfaces, handlers get services, and nothing above the repository
// ever sees SQL.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /auth/register              → create account, returns token
//	POST /auth/login                 → returns token
//	GET  /api/users                  → list user profiles
//	GET  /api/users/{username}       → user detail
//	GET  /api/users/{username}/to    → messages received by user
//	GET  /api/users/{username}/from  → messages sent by user
//	POST /api/messages               → send a message
//	GET  /api/messages/{id}          → message detail (participants only)
//	POST /api/messages/{id}/read     → mark read (recipient only)
//
// Everything under /api requires a bearer token; /auth is public.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	userService := service.NewUserService(s.db.Users(), s.logger)
	messageService := service.NewMessageService(s.db.Messages(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	messageHandler := handler.NewMessageHandler(messageService, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Get("/users/{username}/to", userHandler.HandleMessagesTo)
		r.Get("/users/{username}/from", userHandler.HandleMessagesFrom)

		r.Post("/messages", messageHandler.HandleSend)
		r.Get("/messages/{id}", messageHandler.HandleGet)
		r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
	})

	return nil
}

// Handler exposes the router, mainly for httptest in handler tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's database connection. Start does this
// itself; Close is for callers (tests) that never Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains
// in-flight requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
