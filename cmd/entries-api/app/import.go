package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/entries-server/internal/app/storage"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/git"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import entries from a YAML file",
		Long: `Import entries from a YAML file into the configured storage.

Each item names the entry id, collection and site, its slug, blueprint,
publish state and data. Entries of structured collections are placed in
the tree under their parent, entries of searchable collections are indexed.
Entries are saved as given, without blueprint processing.

With --git-url, FILE is a path inside the repository, which is cloned into
memory at the given branch, tag or commit. The password for private
repositories is read from ENTRIES_GIT_PASSWORD.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().String("git-url", "", "Read FILE from this Git repository")
	cmd.Flags().String("git-branch", "", "Branch to read from")
	cmd.Flags().String("git-tag", "", "Tag to read from")
	cmd.Flags().String("git-commit", "", "Commit to read from")
	cmd.Flags().String("git-username", "", "Username for HTTP basic authentication")
	cmd.MarkFlagsMutuallyExclusive("git-branch", "git-tag", "git-commit")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Storage.GetType() != config.StorageTypeDatabase {
		return fmt.Errorf("import requires storage type %s, memory storage loads storage.seedFile at startup",
			config.StorageTypeDatabase)
	}

	factory, err := storage.NewStorageFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer factory.Cleanup()

	stores, err := factory.CreateStores(ctx)
	if err != nil {
		return fmt.Errorf("failed to create stores: %w", err)
	}

	src, err := gitSource(cmd)
	if err != nil {
		return err
	}

	var count int
	if src != nil {
		count, err = storage.ImportGit(ctx, cfg, stores, git.NewClient(), src, args[0])
	} else {
		count, err = storage.ImportFile(ctx, cfg, stores, args[0])
	}
	if err != nil {
		return fmt.Errorf("import stopped after %d entries: %w", count, err)
	}

	slog.Info("Import complete", "file", args[0], "entries", count)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", count)
	return err
}

// gitSource returns the repository named by the git flags, or nil when
// --git-url is not set.
func gitSource(cmd *cobra.Command) (*git.Source, error) {
	flags := cmd.Flags()
	url, err := flags.GetString("git-url")
	if err != nil {
		return nil, err
	}
	if url == "" {
		for _, name := range []string{"git-branch", "git-tag", "git-commit", "git-username"} {
			if flags.Changed(name) {
				return nil, fmt.Errorf("--%s requires --git-url", name)
			}
		}
		return nil, nil
	}

	src := &git.Source{URL: url}
	src.Branch, _ = flags.GetString("git-branch")
	src.Tag, _ = flags.GetString("git-tag")
	src.Commit, _ = flags.GetString("git-commit")
	if username, _ := flags.GetString("git-username"); username != "" {
		v := viper.New()
		v.SetEnvPrefix(config.EnvPrefix)
		if err := v.BindEnv("git_password"); err != nil {
			return nil, err
		}
		src.Auth = &git.BasicAuth{Username: username, Password: v.GetString("git_password")}
	}
	return src, nil
}
