// Package app provides the commands of the entries API server binary.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/entries-server/pkg/versions"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "entries-api",
		DisableAutoGenTag: true,
		Short:             "Entries API server",
		Long: `Entries API server exposes the control panel REST API for listing,
editing, creating, deleting and revising the entries of content collections.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		slog.Error("Error binding debug flag", "error", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newValidateCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info: %w", err)
				}
				_, err = fmt.Fprintln(out, string(output))
				return err
			}

			_, err = fmt.Fprintf(out, "entries-api %s\ncommit: %s\nbuilt: %s\ngo: %s\nplatform: %s\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
