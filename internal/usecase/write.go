package usecase

import (
	"context"
	"database/sql"
	"fmt"

	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/ports"
	"PublicationIndex/internal/query"
)

// storePublication writes a staged publication, its new authors and its authorship links.
func storePublication(ctx context.Context, ex ports.Execer, staged Staged) error {
	pub := staged.Publication

	stmt, err := query.InsertPublication(pub)
	if err != nil {
		return fmt.Errorf("build publication insert: %w", err)
	}
	if _, err := exec(ctx, ex, stmt); err != nil {
		return apperr.FromStorage(fmt.Sprintf("insert publication %d %q", pub.ID, pub.Title), err)
	}

	for _, author := range staged.NewAuthors {
		stmt, err := query.InsertAuthor(author)
		if err != nil {
			return fmt.Errorf("build author insert: %w", err)
		}
		if _, err := exec(ctx, ex, stmt); err != nil {
			return apperr.FromStorage(fmt.Sprintf("insert author %d %q", author.ID, author.Name), err)
		}
	}

	for _, link := range staged.Links {
		stmt, err := query.InsertAuthorship(link)
		if err != nil {
			return fmt.Errorf("build authorship insert: %w", err)
		}
		if _, err := exec(ctx, ex, stmt); err != nil {
			return apperr.FromStorage(fmt.Sprintf("link publication %d to author %d", link.PublicationID, link.AuthorID), err)
		}
	}

	return nil
}

func exec(ctx context.Context, ex ports.Execer, stmt query.Statement) (sql.Result, error) {
	return ex.ExecContext(ctx, stmt.SQL, stmt.Args...)
}

// execAffected runs stmt and returns the number of rows it changed.
func execAffected(ctx context.Context, ex ports.Execer, stmt query.Statement) (int64, error) {
	res, err := exec(ctx, ex, stmt)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
