package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

// InsertPublication inserts one publication row. An unknown year is stored as NULL.
func InsertPublication(pub domain.Publication) (Statement, error) {
	return toStatement(sq.Insert("publication").
		Columns("id", "title", "year", "venue", "pages").
		Values(pub.ID, pub.Title, yearValue(pub.Year), pub.Venue, pub.Pages))
}

// InsertAuthor inserts one author row.
func InsertAuthor(author domain.Author) (Statement, error) {
	return toStatement(sq.Insert("author").
		Columns("id", "name").
		Values(author.ID, author.Name))
}

// InsertAuthorship links a publication to an author. A pair that already
// exists is left alone by the (pub_id, author_id) primary key.
func InsertAuthorship(link domain.Authorship) (Statement, error) {
	return toStatement(sq.Insert("written_by").
		Options("OR IGNORE").
		Columns("pub_id", "author_id").
		Values(link.PublicationID, link.AuthorID))
}

// PublicationChanges lists the columns to overwrite; zero values are left untouched.
type PublicationChanges struct {
	Title string
	Year  int
	Venue string
	Pages string
}

// IsEmpty reports whether no column would change.
func (c PublicationChanges) IsEmpty() bool {
	return c.Title == "" && c.Year == 0 && c.Venue == "" && c.Pages == ""
}

// UpdatePublication sets the non-empty changes on publications matching key.
func UpdatePublication(key domain.PublicationKey, changes PublicationChanges) (Statement, error) {
	if changes.IsEmpty() {
		return Statement{}, apperr.Validation("no publication fields to update")
	}

	set := map[string]any{}
	if changes.Title != "" {
		set["title"] = changes.Title
	}
	if changes.Year != 0 {
		set["year"] = changes.Year
	}
	if changes.Venue != "" {
		set["venue"] = changes.Venue
	}
	if changes.Pages != "" {
		set["pages"] = changes.Pages
	}

	return toStatement(sq.Update("publication").SetMap(set).Where(keyPredicate(key)))
}

// DeletePublication removes publications matching key; authorship rows cascade.
func DeletePublication(key domain.PublicationKey) (Statement, error) {
	return toStatement(sq.Delete("publication").Where(keyPredicate(key)))
}

// DeletePublicationsByAuthor removes publications written by author in the
// given year and venue. The author name is matched case-insensitively.
func DeletePublicationsByAuthor(author string, year int, venue string) (Statement, error) {
	if author == "" {
		return Statement{}, apperr.Validation("author name is required")
	}

	sub, subArgs, err := sq.Select("p.id").
		From("publication p").
		Join("written_by w ON w.pub_id = p.id").
		Join("author a ON a.id = w.author_id").
		Where(sq.Expr("LOWER(a.name) = LOWER(?)", author)).
		Where(sq.Eq{"p.year": yearValue(year), "p.venue": venue}).
		ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("build author subquery: %w", err)
	}

	return toStatement(sq.Delete("publication").Where(sq.Expr("id IN ("+sub+")", subArgs...)))
}

// RenameAuthor renames every author whose name equals oldName exactly.
func RenameAuthor(oldName, newName string) (Statement, error) {
	if oldName == "" || newName == "" {
		return Statement{}, apperr.Validation("old and new author names are required")
	}
	return toStatement(sq.Update("author").Set("name", newName).Where(sq.Eq{"name": oldName}))
}

// MergeAuthorships links every publication of the from authors to the into
// author. Pairs the into author already has are left alone.
func MergeAuthorships(from []int64, into int64) (Statement, error) {
	if len(from) == 0 {
		return Statement{}, apperr.Validation("no authors to merge")
	}
	return toStatement(sq.Insert("written_by").
		Options("OR IGNORE").
		Columns("pub_id", "author_id").
		Select(sq.Select("pub_id").
			Column(sq.Expr("?", into)).
			From("written_by").
			Where(sq.Eq{"author_id": from}).
			OrderBy("rowid")))
}

// SelectAuthors finds authors by exact name, or by NamePattern when exact is false.
func SelectAuthors(name string, exact bool) (Statement, error) {
	if strings.TrimSpace(name) == "" {
		return Statement{}, apperr.Validation("author name is required")
	}

	builder := sq.Select("id", "name").From("author").OrderBy("id")
	if exact {
		builder = builder.Where(sq.Eq{"name": name})
	} else {
		builder = builder.Where(sq.Expr("LOWER(name) LIKE LOWER(?) ESCAPE '\\'", NamePattern(name)))
	}
	return toStatement(builder)
}

// DeleteAuthors removes authors by id; their authorship rows cascade.
func DeleteAuthors(ids []int64) (Statement, error) {
	return toStatement(sq.Delete("author").Where(sq.Eq{"id": ids}))
}

// NamePattern turns a loose author name into a LIKE pattern: words are joined
// by wildcards, and with three or more words the second one is reduced to its
// initial ("John Q. Public" matches "John Quincy Public").
func NamePattern(name string) string {
	words := strings.Fields(name)
	if len(words) >= 3 {
		words[1] = string([]rune(words[1])[:1])
	}
	for i, w := range words {
		words[i] = likeEscaper.Replace(w)
	}
	return "%" + strings.Join(words, "%") + "%"
}

func keyPredicate(key domain.PublicationKey) sq.Eq {
	return sq.Eq{
		"title": key.Title,
		"year":  yearValue(key.Year),
		"venue": key.Venue,
	}
}

func yearValue(year int) any {
	if year == 0 {
		return nil
	}
	return year
}
