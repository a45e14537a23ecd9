package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authorExact bool

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Rename or delete authors",
}

var authorRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename every author called <old>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.Catalog().UpdateAuthor(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %d author(s)\n", n)
		return nil
	},
}

var authorDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete authors by name; publications are kept",
	Long: `Delete authors matching <name>. By default the match is loose: words may
have anything between them, and with three or more words the middle one only
needs its initial ("John Q. Public" also removes "John Quincy Public").
Use --exact for an exact, case-sensitive name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.Catalog().DeleteAuthor(cmd.Context(), args[0], authorExact)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d author(s)\n", n)
		return nil
	},
}

func init() {
	authorDeleteCmd.Flags().BoolVar(&authorExact, "exact", false, "match the name exactly")

	authorCmd.AddCommand(authorRenameCmd)
	authorCmd.AddCommand(authorDeleteCmd)
}
