// Package database provides database migration tooling.
package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// scheme with golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsFromSource returns a migration source driver from the embedded migrations.
func migrationsFromSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// Migrator is the interface for the migration tooling.
type Migrator interface {
	Up() error
	Down() error
	Steps(int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// NewFromConnectionString returns a new migration instance from the given
// connection URL.
func NewFromConnectionString(connString string) (Migrator, error) {
	d, err := migrationsFromSource()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, migrateURL(connString))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations. An up to date schema is not an error.
func MigrateUp(connString string) error {
	m, err := NewFromConnectionString(connString)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrateDown reverts the given number of migrations, all of them when steps is 0.
func MigrateDown(connString string, steps int) error {
	m, err := NewFromConnectionString(connString)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if steps == 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres:// connection URL into the pgx5:// form
// expected by the migrate driver.
func migrateURL(connString string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(connString, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return connString
}
