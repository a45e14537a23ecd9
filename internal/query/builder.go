// Package query composes parameterized SQL for the publication catalog.
// Every value reaches the driver as a bound argument; only column names and
// sort directions chosen from fixed tables are written into the SQL text.
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	apperr "PublicationIndex/internal/errors"
)

// SortKey selects the ordering column of a query.
type SortKey string

const (
	SortTitle  SortKey = "title"
	SortYear   SortKey = "year"
	SortVenue  SortKey = "venue"
	SortAuthor SortKey = "author"
)

var sortColumns = map[SortKey]string{
	SortTitle:  "p.title",
	SortYear:   "p.year",
	SortVenue:  "p.venue",
	SortAuthor: "a.name",
}

// RowColumns is the column order of every row statement; see Row.
var RowColumns = []string{"p.id", "p.title", "p.year", "p.venue", "p.pages", "a.id", "a.name"}

// Criteria describes one catalog read.
type Criteria struct {
	Author string
	Title  string
	Venue  string
	// Year is ignored when zero.
	Year int
	// Exact selects case-insensitive equality; otherwise substring containment.
	Exact      bool
	Sort       SortKey
	Descending bool
	// Start and End bound the half-open window [Start, End). End <= 0 means no upper bound.
	Start int
	End   int
}

// ByAuthor reports whether the window counts author rows instead of publications.
func (c Criteria) ByAuthor() bool {
	return c.Sort == SortAuthor
}

// Statement is SQL text plus its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Plan holds the statements needed to answer one Criteria.
type Plan struct {
	criteria Criteria
	// Count yields the number of distinct matching publications, ignoring the window.
	Count Statement
	// Page yields the windowed publication ids, or in author mode the windowed rows themselves.
	Page Statement
	// Rows yields the (publication, author) rows of the window, in window
	// order and then authorship order. In author mode it equals Page.
	Rows Statement
}

// ByAuthor reports whether Page already returns rows.
func (p Plan) ByAuthor() bool {
	return p.criteria.ByAuthor()
}

// Build validates the criteria and composes its statements.
func Build(c Criteria) (Plan, error) {
	if c.Sort == "" {
		c.Sort = SortTitle
	}
	if _, ok := sortColumns[c.Sort]; !ok {
		return Plan{}, apperr.Validationf("unknown sort key %q", c.Sort)
	}
	if c.Start < 0 {
		return Plan{}, apperr.Validationf("window start %d is negative", c.Start)
	}
	if c.Year < 0 {
		return Plan{}, apperr.Validationf("year %d is negative", c.Year)
	}

	plan := Plan{criteria: c}

	count, err := toStatement(filtered(joined("COUNT(DISTINCT p.id)"), c))
	if err != nil {
		return Plan{}, fmt.Errorf("build count: %w", err)
	}
	plan.Count = count

	var page sq.SelectBuilder
	if c.ByAuthor() {
		page = filtered(joined(RowColumns...), c).
			Where("a.id IS NOT NULL").
			OrderBy(orderBy(c, "p.id")...)
	} else {
		page = filtered(joined("p.id"), c).
			GroupBy("p.id").
			OrderBy(orderBy(c, "p.id")...)
	}

	plan.Page, err = toStatement(window(page, c))
	if err != nil {
		return Plan{}, fmt.Errorf("build page: %w", err)
	}

	if c.ByAuthor() {
		plan.Rows = plan.Page
		return plan, nil
	}

	// The window stays inside SQLite as a subquery, so the number of bound
	// variables does not grow with the number of matches.
	rows := joined(RowColumns...).
		Where(sq.Expr("p.id IN ("+plan.Page.SQL+")", plan.Page.Args...)).
		OrderBy(orderBy(c, "p.id", "w.rowid")...)
	plan.Rows, err = toStatement(rows)
	if err != nil {
		return Plan{}, fmt.Errorf("build rows: %w", err)
	}

	return plan, nil
}

func joined(columns ...string) sq.SelectBuilder {
	return sq.Select(columns...).
		From("publication p").
		LeftJoin("written_by w ON w.pub_id = p.id").
		LeftJoin("author a ON a.id = w.author_id")
}

// filtered adds one predicate per non-empty filter value; predicates are ANDed.
func filtered(b sq.SelectBuilder, c Criteria) sq.SelectBuilder {
	if c.Author != "" {
		b = b.Where(match("a.name", c.Author, c.Exact))
	}
	if c.Title != "" {
		b = b.Where(match("p.title", c.Title, c.Exact))
	}
	if c.Year != 0 {
		b = b.Where(sq.Eq{"p.year": c.Year})
	}
	if c.Venue != "" {
		b = b.Where(match("p.venue", c.Venue, c.Exact))
	}
	return b
}

func match(column, value string, exact bool) sq.Sqlizer {
	if exact {
		return sq.Expr("LOWER("+column+") = LOWER(?)", value)
	}
	return sq.Expr("LOWER("+column+") LIKE LOWER(?) ESCAPE '\\'", Contains(value))
}

func orderBy(c Criteria, tiebreakers ...string) []string {
	dir := "ASC"
	if c.Descending {
		dir = "DESC"
	}
	clauses := []string{sortColumns[c.Sort] + " " + dir}
	for _, column := range tiebreakers {
		clauses = append(clauses, column+" ASC")
	}
	return clauses
}

func window(b sq.SelectBuilder, c Criteria) sq.SelectBuilder {
	switch {
	case c.End > 0 && c.End <= c.Start:
		return b.Limit(0)
	case c.End > 0:
		return b.Limit(uint64(c.End - c.Start)).Offset(uint64(c.Start))
	case c.Start > 0:
		// SQLite only accepts OFFSET after a LIMIT clause.
		return b.Suffix("LIMIT -1 OFFSET ?", c.Start)
	default:
		return b
	}
}

func toStatement(s sq.Sqlizer) (Statement, error) {
	sqlText, args, err := s.ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sqlText, Args: args}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains returns a LIKE pattern matching value anywhere, with wildcards in value escaped.
func Contains(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
