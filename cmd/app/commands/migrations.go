package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsPath returns the migration source for a database driver.
func migrationsPath(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "file://migrations/postgresql", nil
	case "mysql":
		return "file://migrations/mysql", nil
	default:
		return "", fmt.Errorf("failed to create migrate instance: unsupported database driver: %s", driver)
	}
}

// RunMigrations applies every pending migration for driver. No pending migration
// is not an error.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	path, err := migrationsPath(driver)
	if err != nil {
		return err
	}

	m, err := migrate.New(path, databaseURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// databaseURL adds the scheme golang-migrate expects for MySQL DSNs, which the
// go-sql-driver format omits.
func databaseURL(driver, connectionString string) string {
	if driver == "mysql" && len(connectionString) > 0 && !hasScheme(connectionString) {
		return "mysql://" + connectionString
	}
	return connectionString
}

func hasScheme(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == ':' {
			return s[i+1] == '/' && s[i+2] == '/'
		}
		if s[i] == '@' || s[i] == '/' {
			return false
		}
	}
	return false
}
