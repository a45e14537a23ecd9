package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/format"
	"PublicationIndex/internal/ports"
	"PublicationIndex/internal/query"
	"PublicationIndex/internal/validation"
)

// NewPublication is the input of an interactive insert.
type NewPublication struct {
	Title   string   `json:"title" validate:"required,max=400"`
	Year    int      `json:"year" validate:"pubyear"`
	Venue   string   `json:"venue" validate:"max=150"`
	Pages   string   `json:"pages" validate:"max=50"`
	Authors []string `json:"authors" validate:"dive,required,max=150"`
}

// PublicationUpdate lists new values; empty fields are left unchanged.
type PublicationUpdate struct {
	Title string `json:"title" validate:"max=400"`
	Year  int    `json:"year" validate:"pubyear"`
	Venue string `json:"venue" validate:"max=150"`
	Pages string `json:"pages" validate:"max=50"`
}

// CatalogDeps wires the catalog to its collaborators.
type CatalogDeps struct {
	Store     ports.PublicationStore
	Allocator *IdentityAllocator
	Formats   *format.Registry
	Validator *validation.Validator
	Logger    *slog.Logger
}

// Catalog is the interactive publication API. Each write runs in its own
// transaction and is committed before the call returns. It is not safe for
// concurrent use.
type Catalog struct {
	store    ports.PublicationStore
	ids      *IdentityAllocator
	formats  *format.Registry
	validate *validation.Validator
	logger   *slog.Logger
}

// NewCatalog constructs the catalog; nil formats and validator get defaults.
func NewCatalog(deps CatalogDeps) *Catalog {
	if deps.Formats == nil {
		deps.Formats = format.NewRegistry()
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	return &Catalog{
		store:    deps.Store,
		ids:      deps.Allocator,
		formats:  deps.Formats,
		validate: deps.Validator,
		logger:   deps.Logger,
	}
}

// Query runs a search and renders it in the named encoding. It returns the
// encoded window and the total number of distinct matching publications.
func (c *Catalog) Query(ctx context.Context, criteria query.Criteria, encoding string) ([]byte, int, error) {
	encoder, err := c.formats.Resolve(encoding)
	if err != nil {
		return nil, 0, apperr.Validation(err.Error())
	}

	results, err := c.Search(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}

	out, err := encoder.Encode(results)
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s: %w", encoder.Name(), err)
	}
	return out, results.Total, nil
}

// Search returns the window of grouped listings and the total match count.
func (c *Catalog) Search(ctx context.Context, criteria query.Criteria) (format.Results, error) {
	plan, err := query.Build(criteria)
	if err != nil {
		return format.Results{}, err
	}

	total, err := scanCount(ctx, c.store, plan.Count)
	if err != nil {
		return format.Results{}, err
	}

	rows, err := scanRows(ctx, c.store, plan.Rows)
	if err != nil {
		return format.Results{}, err
	}

	c.debug("search", "criteria", criteria, "total", total, "rows", len(rows))
	return format.Results{Total: total, Items: format.Group(rows, plan.ByAuthor())}, nil
}

// InsertPublication stores a new publication with its authors and returns its id.
func (c *Catalog) InsertPublication(ctx context.Context, in NewPublication) (int64, error) {
	if err := c.validate.Validate(in); err != nil {
		return 0, err
	}

	staged := c.ids.Stage(domain.Publication{
		Title:   in.Title,
		Year:    in.Year,
		Venue:   in.Venue,
		Pages:   in.Pages,
		Authors: in.Authors,
	})

	err := c.inTx(ctx, func(tx ports.Tx) error {
		return storePublication(ctx, tx, staged)
	})
	if err != nil {
		return 0, err
	}

	c.ids.Commit(staged)
	c.debug("publication inserted", "id", staged.Publication.ID, "title", in.Title)
	return staged.Publication.ID, nil
}

// UpdatePublication overwrites the non-empty fields of publications matching old.
func (c *Catalog) UpdatePublication(ctx context.Context, old domain.PublicationKey, update PublicationUpdate) (int64, error) {
	if err := c.validate.Validate(update); err != nil {
		return 0, err
	}

	stmt, err := query.UpdatePublication(old, query.PublicationChanges(update))
	if err != nil {
		return 0, err
	}
	return c.mutate(ctx, stmt, fmt.Sprintf("publication %q (%d, %q)", old.Title, old.Year, old.Venue))
}

// DeletePublication removes publications matching key; their authorship links cascade.
func (c *Catalog) DeletePublication(ctx context.Context, key domain.PublicationKey) (int64, error) {
	stmt, err := query.DeletePublication(key)
	if err != nil {
		return 0, err
	}
	return c.mutate(ctx, stmt, fmt.Sprintf("publication %q (%d, %q)", key.Title, key.Year, key.Venue))
}

// DeletePublicationsByAuthor removes publications by author in the given year and venue.
func (c *Catalog) DeletePublicationsByAuthor(ctx context.Context, author string, year int, venue string) (int64, error) {
	stmt, err := query.DeletePublicationsByAuthor(author, year, venue)
	if err != nil {
		return 0, err
	}
	return c.mutate(ctx, stmt, fmt.Sprintf("publications by %q (%d, %q)", author, year, venue))
}

// UpdateAuthor renames every author called oldName. When newName already
// belongs to an author, the renamed authors are merged into that one: their
// publications are linked to it and their own rows are deleted, so a name
// keeps a single id.
func (c *Catalog) UpdateAuthor(ctx context.Context, oldName, newName string) (int64, error) {
	if err := c.validate.Validate(authorName{Name: newName}); err != nil {
		return 0, err
	}
	if oldName == newName {
		return 0, apperr.Validationf("author %q already has that name", oldName)
	}

	sources, err := query.SelectAuthors(oldName, true)
	if err != nil {
		return 0, err
	}
	targets, err := query.SelectAuthors(newName, true)
	if err != nil {
		return 0, err
	}

	var (
		n      int64
		merged bool
	)
	err = c.inTx(ctx, func(tx ports.Tx) error {
		from, err := scanAuthors(ctx, tx, sources)
		if err != nil {
			return err
		}
		if len(from) == 0 {
			return apperr.NotFoundf("no author %q", oldName)
		}
		into, err := scanAuthors(ctx, tx, targets)
		if err != nil {
			return err
		}

		if len(into) == 0 {
			stmt, err := query.RenameAuthor(oldName, newName)
			if err != nil {
				return err
			}
			n, err = execAffected(ctx, tx, stmt)
			if err != nil {
				return apperr.FromStorage(fmt.Sprintf("rename author %q to %q", oldName, newName), err)
			}
			return nil
		}

		merged = true
		ids := authorIDs(from)
		link, err := query.MergeAuthorships(ids, into[0].ID)
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, link); err != nil {
			return apperr.FromStorage(fmt.Sprintf("merge author %q into %q", oldName, newName), err)
		}

		drop, err := query.DeleteAuthors(ids)
		if err != nil {
			return err
		}
		n, err = execAffected(ctx, tx, drop)
		if err != nil {
			return apperr.FromStorage(fmt.Sprintf("delete merged author %q", oldName), err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if merged {
		c.ids.Forget(oldName)
	} else {
		c.ids.Rename(oldName, newName)
	}
	c.debug("author renamed", "old", oldName, "new", newName, "merged", merged, "count", n)
	return n, nil
}

// DeleteAuthor removes authors named exactly name, or loosely matching it when
// exact is false. Their authorship links cascade; publications stay.
func (c *Catalog) DeleteAuthor(ctx context.Context, name string, exact bool) (int64, error) {
	sel, err := query.SelectAuthors(name, exact)
	if err != nil {
		return 0, err
	}

	var (
		deleted []string
		n       int64
	)
	err = c.inTx(ctx, func(tx ports.Tx) error {
		authors, err := scanAuthors(ctx, tx, sel)
		if err != nil {
			return err
		}
		if len(authors) == 0 {
			return apperr.NotFoundf("no author matches %q", name)
		}

		for _, a := range authors {
			deleted = append(deleted, a.Name)
		}

		stmt, err := query.DeleteAuthors(authorIDs(authors))
		if err != nil {
			return err
		}
		n, err = execAffected(ctx, tx, stmt)
		if err != nil {
			return apperr.FromStorage(fmt.Sprintf("delete author %q", name), err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.ids.Forget(deleted...)
	c.debug("authors deleted", "match", name, "exact", exact, "count", n)
	return n, nil
}

func authorIDs(authors []domain.Author) []int64 {
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	return ids
}

type authorName struct {
	Name string `json:"name" validate:"required,max=150"`
}

// mutate runs one statement in its own transaction. Zero affected rows is NotFound.
func (c *Catalog) mutate(ctx context.Context, stmt query.Statement, target string) (int64, error) {
	var n int64
	err := c.inTx(ctx, func(tx ports.Tx) error {
		var err error
		n, err = execAffected(ctx, tx, stmt)
		if err != nil {
			return apperr.FromStorage("change "+target, err)
		}
		if n == 0 {
			return apperr.NotFoundf("no %s", target)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// inTx commits fn's work or rolls it back on error.
func (c *Catalog) inTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return apperr.FromStorage("begin", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return apperr.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.FromStorage("commit", err)
	}
	return nil
}

func (c *Catalog) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func scanCount(ctx context.Context, ex ports.Execer, stmt query.Statement) (int, error) {
	rows, err := ex.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, apperr.FromStorage("count matches", err)
	}
	defer rows.Close()

	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("rows iteration: %w", err)
	}
	return total, nil
}

func scanRows(ctx context.Context, ex ports.Execer, stmt query.Statement) ([]format.Row, error) {
	rows, err := ex.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, apperr.FromStorage("query rows", err)
	}
	defer rows.Close()

	var out []format.Row
	for rows.Next() {
		var (
			row      format.Row
			year     sql.NullInt64
			venue    sql.NullString
			pages    sql.NullString
			authorID sql.NullInt64
			author   sql.NullString
		)
		if err := rows.Scan(&row.PublicationID, &row.Title, &year, &venue, &pages, &authorID, &author); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Year = int(year.Int64)
		row.Venue = venue.String
		row.Pages = pages.String
		row.HasAuthor = authorID.Valid
		row.AuthorID = authorID.Int64
		row.Author = author.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func scanAuthors(ctx context.Context, ex ports.Execer, stmt query.Statement) ([]domain.Author, error) {
	rows, err := ex.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, apperr.FromStorage("query authors", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return authors, nil
}
