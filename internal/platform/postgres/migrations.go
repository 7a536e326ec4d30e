package postgres

import "embed"

// MigrationsDir is the directory of the goose migrations inside Migrations.
const MigrationsDir = "migrations"

// Migrations holds the SQL migrations applied by goose.
//
//go:embed migrations/*.sql
var Migrations embed.FS
