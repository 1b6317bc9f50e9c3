package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/entries-server/database"
	"github.com/stacklok/entries-server/internal/app/storage/auth"
	"github.com/stacklok/entries-server/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	cmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := cmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

// loadDatabaseConfig loads the configuration named by --config and returns
// its database section together with a migration connection string
func loadDatabaseConfig(cmd *cobra.Command) (*config.DatabaseConfig, string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database == nil {
		return nil, "", fmt.Errorf("database configuration is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	connString, err := auth.MigrationConnectionString(ctx, cfg.Database)
	if err != nil {
		return nil, "", err
	}
	return cfg.Database, connString, nil
}

// confirm asks a yes/no question. It refuses when the input is not
// interactive, so scripts must pass --yes.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("refusing to prompt on a non-interactive input, use --yes")
	}
	return readConfirmation(in, cmd.ErrOrStderr(), prompt)
}

func readConfirmation(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s (yes/no): ", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

func displayMigrationVersion(m database.Migrator) {
	version, dirty, err := m.Version()
	switch {
	case err != nil:
		slog.Info("Database schema has no applied migrations")
	case dirty:
		slog.Warn("Database is in a dirty state, manual intervention may be required", "version", version)
	default:
		slog.Info("Current migration version", "version", version)
	}
}
