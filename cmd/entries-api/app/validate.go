package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/schema"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file and its blueprints",
		Long: `Validate a configuration file and the blueprints it references.

Prints the configured collections with their sites, features and the
blueprints found for them. Exits non-zero when the configuration is invalid
or a blueprint cannot be parsed.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return err
	}

	repo := schema.NewRepository()
	if cfg.BlueprintsDir != "" {
		if repo, err = schema.LoadDir(cfg.BlueprintsDir); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Valid configuration: storage %s, search %s, %d sites\n",
		cfg.Storage.GetType(), cfg.Search.GetType(), len(cfg.Sites)); err != nil {
		return err
	}
	return renderCollections(out, cfg, repo)
}

func renderCollections(w io.Writer, cfg *config.Config, repo *schema.Repository) error {
	table := tablewriter.NewWriter(w)
	table.Header("Collection", "Sites", "Structured", "Dated", "Revisions", "Searchable", "Blueprints")
	for _, c := range cfg.Collections {
		handles := make([]string, 0)
		for _, bp := range repo.List(c.Handle) {
			handles = append(handles, bp.Handle)
		}
		if err := table.Append([]string{
			c.Handle,
			strings.Join(c.Sites, ","),
			strconv.FormatBool(c.Structured),
			strconv.FormatBool(c.Dated),
			strconv.FormatBool(c.Revisions),
			strconv.FormatBool(c.Searchable),
			strings.Join(handles, ","),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
