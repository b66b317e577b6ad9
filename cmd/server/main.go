// Package main is the entry point for the messagely server.
//
// main stays minimal: read configuration from the environment, build
// the logger, hand both to the server package, and exit non-zero on
// failure. All real logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sakif/messagely/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/messagely.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET is the process-wide signing secret; every token the
	// server has ever issued verifies against it, so rotating it logs
	// everyone out. Generate with: openssl rand -hex 32
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// TOKEN_TTL accepts Go duration syntax ("24h", "30m"). Zero lets
	// the token service apply its default.
	var tokenTTL time.Duration
	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		var err error
		tokenTTL, err = time.ParseDuration(ttlStr)
		if err != nil {
			logger.Error("invalid TOKEN_TTL value", slog.String("value", ttlStr))
			os.Exit(1)
		}
	}

	// BCRYPT_COST tunes the password hashing work factor. Zero lets the
	// password service apply its default (12).
	bcryptCost := 0
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		var err error
		bcryptCost, err = strconv.Atoi(costStr)
		if err != nil {
			logger.Error("invalid BCRYPT_COST value", slog.String("value", costStr))
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:       port,
		DBPath:     dbPath,
		JWTSecret:  jwtSecret,
		TokenTTL:   tokenTTL,
		BcryptCost: bcryptCost,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
