package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PublicationIndex/internal/query"
)

var (
	queryCriteria query.Criteria
	querySort     string
	queryPage     int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search publications and print them in the selected format",
	Long: `Search publications by author, title, year and venue. Text filters match
case-insensitively as substrings, or as whole values with --exact. The window
[start, end) is applied after sorting; --page fills it from the configured
page size. Sorting by author lists one row per (publication, author) pair.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria := queryCriteria
		criteria.Sort = query.SortKey(querySort)

		cfg := application.Config()
		if queryPage > 0 && cfg.Query.PageSize > 0 {
			criteria.Start = (queryPage - 1) * cfg.Query.PageSize
			criteria.End = criteria.Start + cfg.Query.PageSize
		}

		out, total, err := application.Catalog().Query(cmd.Context(), criteria, cfg.Query.Format)
		if err != nil {
			return err
		}

		logger.Debug("query answered", "total", total)
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryCriteria.Author, "author", "", "author name filter")
	f.StringVar(&queryCriteria.Title, "title", "", "title filter")
	f.StringVar(&queryCriteria.Venue, "venue", "", "venue (booktitle or journal) filter")
	f.IntVar(&queryCriteria.Year, "year", 0, "publication year filter")
	f.BoolVar(&queryCriteria.Exact, "exact", false, "match whole values instead of substrings")
	f.StringVar(&querySort, "sort", string(query.SortTitle), "sort key: title, year, venue or author")
	f.BoolVar(&queryCriteria.Descending, "desc", false, "sort descending")
	f.IntVar(&queryCriteria.Start, "start", 0, "first result index (inclusive)")
	f.IntVar(&queryCriteria.End, "end", 0, "last result index (exclusive); 0 means no limit")
	f.IntVar(&queryPage, "page", 0, "1-based page of query.pageSize results; overrides --start/--end")
}
