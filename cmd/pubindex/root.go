package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"PublicationIndex/internal/app"
	"PublicationIndex/internal/config"
	"PublicationIndex/internal/logging"
)

var (
	cfgFile      string
	dbPath       string
	outputFormat string

	application *app.Application
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pubindex",
	Short: "Load a bibliographic corpus into SQLite and query it",
	Long: `Pubindex parses a tag-delimited bibliographic corpus, repairs records whose
titles carry stray markup, and loads publications and authors into a SQLite
database. The same database can then be searched and edited.

Examples:
  pubindex ingest dblp.xml
  pubindex query --author "Ann Smith" --sort year --desc -o yaml
  pubindex insert --title "A Paper" --year 2004 --venue VLDB --author "Ann Smith"
  pubindex author delete "John Q. Public"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(cfgFile)
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		if outputFormat != "" {
			cfg.Query.Format = outputFormat
		}

		logger = logging.New(cfg.Logging.Level)

		var err error
		application, err = app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: $PUBINDEX_CONFIG)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "", "SQLite database path (overrides config)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "", "output format: json, xml or yaml",
	)

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(authorCmd)
}
