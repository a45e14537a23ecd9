package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PublicationIndex/internal/domain"
)

var ingestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus]",
	Short: "Parse a corpus file and load it into the database",
	Long: `Parse a corpus file and load every valid record in one transaction.
Records that cannot be parsed, repaired or inserted are skipped and listed.
Without a corpus argument the configured ingest.corpusPath is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}

		report, err := application.Ingest(cmd.Context(), path, ingestForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s\n", report.RunID)
		fmt.Fprintf(out, "  parsed:       %d (%d repaired, %d empty blocks)\n", report.Parsed, report.Repaired, report.EmptyBlocks)
		fmt.Fprintf(out, "  inserted:     %d\n", report.Inserted)
		fmt.Fprintf(out, "  skipped:      %d\n", len(report.Errors))
		for _, table := range []domain.Table{domain.TablePublication, domain.TableAuthor, domain.TableWrittenBy} {
			fmt.Fprintf(out, "  %-13s %d rows\n", string(table)+":", report.Counts[table])
		}
		for _, recErr := range report.Errors {
			logger.Warn("skipped record", "error", recErr)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "load even when the database already holds publications")
}
