package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/stacklok/entries-server/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations to bring the schema up to date.
The database connection parameters are read from the config file.`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	dbCfg, connString, err := loadDatabaseConfig(cmd)
	if err != nil {
		return err
	}

	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}

	if !yes {
		ok, err := confirm(cmd, fmt.Sprintf("Apply migrations to %s@%s:%d/%s?",
			dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.Database))
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("Migration cancelled by user")
			return nil
		}
	}

	m, err := database.NewFromConnectionString(connString)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	slog.Info("Applying database migrations", "steps", numSteps)
	if numSteps == 0 {
		err = m.Up()
	} else {
		if numSteps > math.MaxInt {
			return fmt.Errorf("number of steps exceeds maximum allowed value")
		}
		err = m.Steps(int(numSteps)) // #nosec G115 -- overflow checked above
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	displayMigrationVersion(m)
	return nil
}
