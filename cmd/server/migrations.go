package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationTable is the goose version table.
const migrationTable = "schema_migrations"

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
}

// slogGooseLogger forwards goose output to slog. Fatalf does not exit so
// the caller decides how to fail.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// validateMigrationCommand rejects commands that -migrate does not support.
func validateMigrationCommand(command string) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unsupported migration command %q (use up, down, status or version)", command)
	}
	return nil
}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}

	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command))

	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(migrationTable)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	log.Info("Starting migration operation")

	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir); err != nil {
		log.Error("Migration failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("Migration completed", slog.Duration("duration", time.Since(start)))
	return nil
}
