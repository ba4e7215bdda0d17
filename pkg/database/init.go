package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/psyconnect/psyconnect_backend/config"
)

// InitializeDatabases creates the application databases if they don't exist.
// It connects to the default 'postgres' database to create the others.
// This should be called once during setup, before migrations.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	if len(cfg.Server.Databases) == 0 {
		return fmt.Errorf("no database names provided")
	}

	adminCfg := Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   "postgres",
		SSLMode:  cfg.Database.SSLMode,
	}

	conn, err := pgx.Connect(ctx, adminCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close(ctx)

	for _, dbName := range cfg.Server.Databases {
		if err := createDatabaseIfNotExists(ctx, conn, dbName); err != nil {
			return fmt.Errorf("failed to create database %q: %w", dbName, err)
		}
	}

	return nil
}

func createDatabaseIfNotExists(ctx context.Context, conn *pgx.Conn, dbName string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRow(ctx, query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		return nil
	}

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := conn.Exec(createCtx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}
