package usecase

import (
	"context"
	"database/sql"
	"fmt"

	"PublicationIndex/internal/domain"
	"PublicationIndex/internal/ports"
)

// IdentityAllocator hands out publication and author ids for one session.
// It is not safe for concurrent use.
type IdentityAllocator struct {
	nextPublication int64
	nextAuthor      int64
	authors         map[string]int64
}

// Staged is a publication with ids reserved but not yet committed.
type Staged struct {
	Publication domain.Publication
	// NewAuthors are names seen for the first time, in appearance order.
	NewAuthors []domain.Author
	// Links holds one pair per author occurrence, duplicates included.
	Links []domain.Authorship
}

// NewIdentityAllocator seeds counters and the author map from the store.
func NewIdentityAllocator(ctx context.Context, store ports.PublicationStore) (*IdentityAllocator, error) {
	a := &IdentityAllocator{}
	if err := a.Reload(ctx, store); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload discards in-memory state and re-reads it from the store.
func (a *IdentityAllocator) Reload(ctx context.Context, store ports.PublicationStore) error {
	maxPub, err := store.MaxID(ctx, domain.TablePublication)
	if err != nil {
		return fmt.Errorf("max publication id: %w", err)
	}
	maxAuthor, err := store.MaxID(ctx, domain.TableAuthor)
	if err != nil {
		return fmt.Errorf("max author id: %w", err)
	}

	authors, err := loadAuthors(ctx, store)
	if err != nil {
		return err
	}

	a.nextPublication = maxPub + 1
	a.nextAuthor = maxAuthor + 1
	a.authors = authors
	return nil
}

// Stage reserves the next publication id and resolves every author name.
// Nothing changes until Commit, so a staged record that fails to insert
// does not consume ids.
func (a *IdentityAllocator) Stage(pub domain.Publication) Staged {
	pub.ID = a.nextPublication
	staged := Staged{Publication: pub}

	next := a.nextAuthor
	fresh := map[string]int64{}
	for _, name := range pub.Authors {
		id, ok := a.authors[name]
		if !ok {
			id, ok = fresh[name]
		}
		if !ok {
			id = next
			next++
			fresh[name] = id
			staged.NewAuthors = append(staged.NewAuthors, domain.Author{ID: id, Name: name})
		}
		staged.Links = append(staged.Links, domain.Authorship{PublicationID: pub.ID, AuthorID: id})
	}

	return staged
}

// Commit records a successfully stored publication.
func (a *IdentityAllocator) Commit(staged Staged) {
	if staged.Publication.ID >= a.nextPublication {
		a.nextPublication = staged.Publication.ID + 1
	}
	for _, author := range staged.NewAuthors {
		a.authors[author.Name] = author.ID
		if author.ID >= a.nextAuthor {
			a.nextAuthor = author.ID + 1
		}
	}
}

// Fork returns an independent copy. Allocations made on the copy stay
// invisible to the original until Adopt.
func (a *IdentityAllocator) Fork() *IdentityAllocator {
	authors := make(map[string]int64, len(a.authors))
	for name, id := range a.authors {
		authors[name] = id
	}
	return &IdentityAllocator{
		nextPublication: a.nextPublication,
		nextAuthor:      a.nextAuthor,
		authors:         authors,
	}
}

// Adopt replaces a's state with that of a fork whose writes were committed.
func (a *IdentityAllocator) Adopt(fork *IdentityAllocator) {
	a.nextPublication = fork.nextPublication
	a.nextAuthor = fork.nextAuthor
	a.authors = fork.authors
}

// AuthorID returns the id allocated to name, if any.
func (a *IdentityAllocator) AuthorID(name string) (int64, bool) {
	id, ok := a.authors[name]
	return id, ok
}

// Rename moves an author id to its new name.
func (a *IdentityAllocator) Rename(oldName, newName string) {
	id, ok := a.authors[oldName]
	if !ok {
		return
	}
	delete(a.authors, oldName)
	if _, taken := a.authors[newName]; !taken {
		a.authors[newName] = id
	}
}

// Forget drops deleted author names so they are allocated afresh.
func (a *IdentityAllocator) Forget(names ...string) {
	for _, name := range names {
		delete(a.authors, name)
	}
}

func loadAuthors(ctx context.Context, store ports.PublicationStore) (map[string]int64, error) {
	rows, err := store.QueryContext(ctx, `SELECT id, name FROM author ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}

	authors := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan author: %w", err)
		}
		if _, seen := authors[name.String]; !seen {
			authors[name.String] = id
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return authors, nil
}
