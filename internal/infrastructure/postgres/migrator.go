package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// RunMigrations brings the ledger schema up to the latest version. A schema
// left dirty by an interrupted run is reported instead of retried, since the
// append-only triggers may be half installed.
func RunMigrations(databaseURL, migrationsPath string, logger zerolog.Logger) error {
	m, err := migrate.New(migrationSource(migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()

	var dirty migrate.ErrDirty
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug().Msg("ledger schema up to date")
		return nil
	case errors.As(err, &dirty):
		return fmt.Errorf("ledger schema dirty at version %d, fix it and force the version: %w", dirty.Version, err)
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info().Uint("schema_version", version).Msg("ledger schema migrated")

	return nil
}

// migrationSource turns a directory into a migrate source URL. Paths that
// already carry a scheme are passed through.
func migrationSource(path string) string {
	if strings.Contains(path, "://") {
		return path
	}

	return "file://" + path
}
