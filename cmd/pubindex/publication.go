package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PublicationIndex/internal/domain"
	"PublicationIndex/internal/usecase"
)

var (
	insertInput usecase.NewPublication

	targetKey    domain.PublicationKey
	updateInput  usecase.PublicationUpdate
	deleteAuthor string
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Add a publication with its authors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := application.Catalog().InsertPublication(cmd.Context(), insertInput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted publication %d\n", id)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change fields of the publications matching title, year and venue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.Catalog().UpdatePublication(cmd.Context(), targetKey, updateInput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d publication(s)\n", n)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete publications by title, year and venue, or by author, year and venue",
	Long: `Delete publications matching --title, --year and --venue. With --by-author
the title is ignored and every publication of that author in the given year
and venue is deleted instead. Authorship links are removed with them; authors
stay.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			n   int64
			err error
		)
		if deleteAuthor != "" {
			n, err = application.Catalog().DeletePublicationsByAuthor(cmd.Context(), deleteAuthor, targetKey.Year, targetKey.Venue)
		} else {
			n, err = application.Catalog().DeletePublication(cmd.Context(), targetKey)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d publication(s)\n", n)
		return nil
	},
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&targetKey.Title, "title", "", "title of the publication to match")
	cmd.Flags().IntVar(&targetKey.Year, "year", 0, "year of the publication to match; 0 matches unknown years")
	cmd.Flags().StringVar(&targetKey.Venue, "venue", "", "venue of the publication to match")
}

func init() {
	f := insertCmd.Flags()
	f.StringVar(&insertInput.Title, "title", "", "publication title")
	f.IntVar(&insertInput.Year, "year", 0, "publication year; 0 when unknown")
	f.StringVar(&insertInput.Venue, "venue", "", "booktitle or journal")
	f.StringVar(&insertInput.Pages, "pages", "", "page range")
	f.StringArrayVar(&insertInput.Authors, "author", nil, "author name; repeat for several authors")

	addKeyFlags(updateCmd)
	f = updateCmd.Flags()
	f.StringVar(&updateInput.Title, "set-title", "", "new title")
	f.IntVar(&updateInput.Year, "set-year", 0, "new year")
	f.StringVar(&updateInput.Venue, "set-venue", "", "new venue")
	f.StringVar(&updateInput.Pages, "set-pages", "", "new page range")

	addKeyFlags(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteAuthor, "by-author", "", "delete this author's publications in --year and --venue")
}
