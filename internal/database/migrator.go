package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations. A target of 0 means the latest
// version; a lower target than the current one rolls back.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	if cfg.Database == nil {
		return fmt.Errorf("database is not configured")
	}

	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	latest := int32(len(m.Migrations))
	if target <= 0 {
		target = latest
	}
	if target > latest {
		return fmt.Errorf("migration target %d is beyond the latest version %d", target, latest)
	}

	if from == target {
		logger.Info().Int32("version", from).Msg("database schema up to date")
		return nil
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return fmt.Errorf("running database migrations: %w", err)
	}

	logger.Info().Int32("from", from).Int32("to", target).Msg("migrated database schema")
	return nil
}
