package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

func TestBuildBindsFilterValues(t *testing.T) {
	t.Parallel()

	plan, err := Build(Criteria{Author: "O'Brien", Title: "50%_off", Year: 2001, Venue: "VLDB", Exact: false})
	require.NoError(t, err)

	for _, stmt := range []Statement{plan.Count, plan.Page} {
		assert.NotContains(t, stmt.SQL, "O'Brien")
		assert.NotContains(t, stmt.SQL, "VLDB")
		assert.Contains(t, stmt.SQL, "LEFT JOIN written_by w ON w.pub_id = p.id")
		assert.Contains(t, stmt.SQL, "LEFT JOIN author a ON a.id = w.author_id")
	}

	assert.True(t, strings.HasPrefix(plan.Count.SQL, "SELECT COUNT(DISTINCT p.id) FROM publication p"))
	assert.Equal(t, []any{"%O'Brien%", `%50\%\_off%`, 2001, "%VLDB%"}, plan.Count.Args)
	assert.Contains(t, plan.Page.SQL, "GROUP BY p.id")
	assert.Contains(t, plan.Page.SQL, "ORDER BY p.title ASC, p.id ASC")
	assert.NotContains(t, plan.Page.SQL, "LIMIT")
}

func TestBuildExactMatch(t *testing.T) {
	t.Parallel()

	plan, err := Build(Criteria{Title: "X", Exact: true})
	require.NoError(t, err)
	assert.Contains(t, plan.Count.SQL, "LOWER(p.title) = LOWER(?)")
	assert.Equal(t, []any{"X"}, plan.Count.Args)
}

func TestBuildWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		start    int
		end      int
		contains string
		args     []any
	}{
		{name: "bounded", start: 3, end: 6, contains: "LIMIT 3 OFFSET 3"},
		{name: "start only", start: 4, contains: "LIMIT -1 OFFSET ?", args: []any{4}},
		{name: "empty window", start: 5, end: 5, contains: "LIMIT 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(Criteria{Start: tt.start, End: tt.end})
			require.NoError(t, err)
			assert.Contains(t, plan.Page.SQL, tt.contains)
			if tt.args != nil {
				assert.Equal(t, tt.args, plan.Page.Args)
			}
			assert.NotContains(t, plan.Count.SQL, "LIMIT")
		})
	}
}

func TestBuildAuthorMode(t *testing.T) {
	t.Parallel()

	plan, err := Build(Criteria{Sort: SortAuthor, Descending: true})
	require.NoError(t, err)
	assert.True(t, plan.ByAuthor())
	assert.Contains(t, plan.Page.SQL, "a.id IS NOT NULL")
	assert.Contains(t, plan.Page.SQL, "ORDER BY a.name DESC, p.id ASC")
	assert.Contains(t, plan.Page.SQL, strings.Join(RowColumns, ", "))
	assert.Equal(t, plan.Page, plan.Rows)
}

func TestBuildRejectsBadCriteria(t *testing.T) {
	t.Parallel()

	for _, c := range []Criteria{{Sort: "pages"}, {Start: -1}, {Year: -5}} {
		_, err := Build(c)
		assert.True(t, apperr.Is(err, apperr.ErrValidation), "criteria %+v: %v", c, err)
	}
}

func TestPlanRowsNestsWindow(t *testing.T) {
	t.Parallel()

	plan, err := Build(Criteria{Title: "db", Sort: SortYear, Start: 40000})
	require.NoError(t, err)

	assert.Contains(t, plan.Rows.SQL, "p.id IN ("+plan.Page.SQL+")")
	assert.Contains(t, plan.Rows.SQL, "ORDER BY p.year ASC, p.id ASC, w.rowid ASC")
	assert.Equal(t, plan.Page.Args, plan.Rows.Args)
	assert.Equal(t, []any{"%db%", 40000}, plan.Rows.Args)
}

func TestWriteStatements(t *testing.T) {
	t.Parallel()

	stmt, err := InsertPublication(domain.Publication{ID: 5, Title: "T", Venue: "V"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO publication (id,title,year,venue,pages) VALUES (?,?,?,?,?)", stmt.SQL)
	assert.Equal(t, []any{int64(5), "T", nil, "V", ""}, stmt.Args)

	stmt, err = InsertAuthorship(domain.Authorship{PublicationID: 5, AuthorID: 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stmt.SQL, "INSERT OR IGNORE INTO written_by"))

	stmt, err = DeletePublication(domain.PublicationKey{Title: "T"})
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "year IS NULL")

	stmt, err = DeletePublicationsByAuthor("Ann", 2000, "V")
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "DELETE FROM publication WHERE id IN (SELECT p.id FROM publication p")
	assert.Equal(t, []any{"Ann", "V", 2000}, stmt.Args)

	_, err = UpdatePublication(domain.PublicationKey{Title: "T"}, PublicationChanges{})
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = SelectAuthors("  ", false)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
}

func TestNamePattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%John%Q%Public%", NamePattern("John Quincy Public"))
	assert.Equal(t, "%Ann%Smith%", NamePattern("Ann  Smith"))
	assert.Equal(t, `%100\%%`, NamePattern("100%"))
}

func TestContainsEscapesWildcards(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `%a\_b\\c%`, Contains(`a_b\c`))
}
