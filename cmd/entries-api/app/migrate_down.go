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

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Migrate the database down",
		Long: `Migrate the database schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  entries-api migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way (WARNING: destroys all data)
  entries-api migrate down --config config.yaml --yes`,
		RunE: runMigrateDown,
	}
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	_, connString, err := loadDatabaseConfig(cmd)
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
		prompt := fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
		if numSteps == 0 {
			prompt = "WARNING: This will migrate down ALL steps and may result in complete data loss. Continue?"
		}
		ok, err := confirm(cmd, prompt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("migration cancelled by user")
		}
	}

	m, err := database.NewFromConnectionString(connString)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	return executeMigrateDown(m, numSteps)
}

func executeMigrateDown(m database.Migrator, numSteps uint) error {
	var err error
	if numSteps == 0 {
		slog.Warn("Migrating down all steps - this will remove all schema!")
		err = m.Down()
	} else {
		if numSteps > math.MaxInt {
			return fmt.Errorf("number of steps exceeds maximum allowed value")
		}
		slog.Info("Migrating down", "steps", numSteps)
		err = m.Steps(-1 * int(numSteps)) // #nosec G115 -- overflow checked above
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("No migrations to revert")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Migration completed successfully")
	displayMigrationVersion(m)
	return nil
}
