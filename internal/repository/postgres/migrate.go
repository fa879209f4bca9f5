package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// newMigrationProvider reads the embedded goose migrations. Applied versions are
// tracked in goose_db_version.
func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, db, fsys)
}

// Migrate applies every pending migration, each in its own transaction, and returns
// how many were applied.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) (int, error) {
	provider, err := newMigrationProvider(db)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, res := range results {
		logger.Info("Applied migration",
			zap.Int64("version", res.Source.Version),
			zap.String("file", res.Source.Path),
			zap.Duration("duration", res.Duration),
		)
	}

	return len(results), nil
}
