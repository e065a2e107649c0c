package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/osse101/StreamRealm_Go/internal/config"
	"github.com/osse101/StreamRealm_Go/internal/database"
)

// reset drops and recreates the configured database, then applies migrations.
// It reads the same environment as the server but does not require API_KEY.
func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("Failed to parse environment", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := recreate(ctx, &cfg); err != nil {
		slog.Error("Database reset failed", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLifetime)
	if err != nil {
		slog.Error("Failed to connect to new database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		slog.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database reset complete", "db", cfg.DBName)
}

// recreate connects to the maintenance database and rebuilds cfg.DBName
func recreate(ctx context.Context, cfg *config.Config) error {
	admin := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/postgres",
		RawQuery: "sslmode=disable",
	}
	conn, err := pgx.Connect(ctx, admin.String())
	if err != nil {
		return fmt.Errorf("connect to postgres server: %w", err)
	}
	defer conn.Close(ctx)

	name := pgx.Identifier{cfg.DBName}.Sanitize()

	slog.Info("Terminating existing connections", "db", cfg.DBName)
	if _, err := conn.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, cfg.DBName); err != nil {
		slog.Warn("Failed to terminate connections", "error", err)
	}

	slog.Info("Dropping database", "db", cfg.DBName)
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	slog.Info("Creating database", "db", cfg.DBName)
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+name); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}
