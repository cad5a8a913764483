package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// RunMigrations applies all pending schema migrations from the file source
// at path against the database behind dsn. A schema that is already current
// is not an error.
func RunMigrations(dsn, path string, log zerolog.Logger) error {
	m, err := migrate.New("file://"+path, dsn)
	if err != nil {
		return fmt.Errorf("opening migrations at %s: %w", path, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn().Err(srcErr).Msg("closing migration source")
		}
		if dbErr != nil {
			log.Warn().Err(dbErr).Msg("closing migration database handle")
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database schema up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	log.Info().Msg("database migrations applied")
	return nil
}
