package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), Options{}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSchemaRendersYearRange(t *testing.T) {
	t.Parallel()

	schema := Schema()
	if strings.Contains(schema, "{{") {
		t.Fatalf("unrendered placeholder in schema:\n%s", schema)
	}
	if !strings.Contains(schema, "year >= "+strconv.Itoa(domain.MinYear)) {
		t.Fatalf("schema missing lower year bound")
	}
	if !strings.Contains(schema, "year <= "+strconv.Itoa(domain.MaxYear())) {
		t.Fatalf("schema missing upper year bound")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := Open(ctx, path, Options{}, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.ExecContext(ctx, `INSERT INTO author(id, name) VALUES (1, 'Ann')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(ctx, path, Options{}, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	n, err := second.Count(ctx, domain.TableAuthor)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 author after reopen, got %d", n)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.ExecContext(ctx, `INSERT INTO written_by(pub_id, author_id) VALUES (7, 9)`)
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
	if !apperr.Is(apperr.FromStorage("link", err), apperr.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestYearCheckConstraint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.ExecContext(ctx, `INSERT INTO publication(id, title, year) VALUES (1, 'Old', 1700)`); err == nil {
		t.Fatalf("expected check violation for year 1700")
	}
	if _, err := store.ExecContext(ctx, `INSERT INTO publication(id, title, year) VALUES (1, 'Unknown', NULL)`); err != nil {
		t.Fatalf("null year should be accepted: %v", err)
	}
}

func TestMaxIDAndCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	id, err := store.MaxID(ctx, domain.TablePublication)
	if err != nil {
		t.Fatalf("max id: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected 0 on empty table, got %d", id)
	}

	if _, err := store.ExecContext(ctx, `INSERT INTO publication(id, title, year) VALUES (4, 'A', 2000), (11, 'B', 2001)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	id, err = store.MaxID(ctx, domain.TablePublication)
	if err != nil || id != 11 {
		t.Fatalf("expected max id 11, got %d (%v)", id, err)
	}

	n, err := store.Count(ctx, domain.TablePublication)
	if err != nil || n != 2 {
		t.Fatalf("expected count 2, got %d (%v)", n, err)
	}

	if _, err := store.MaxID(ctx, domain.TableWrittenBy); err == nil {
		t.Fatalf("written_by has no id column")
	}
	if _, err := store.Count(ctx, domain.Table("article")); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestCascadeOnPublicationDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	script := `
INSERT INTO publication(id, title, year) VALUES (1, 'A', 2000);
INSERT INTO author(id, name) VALUES (1, 'Ann');
INSERT INTO written_by(pub_id, author_id) VALUES (1, 1);
DELETE FROM publication WHERE id = 1;`
	if err := store.ExecScript(ctx, script); err != nil {
		t.Fatalf("script: %v", err)
	}

	links, err := store.Count(ctx, domain.TableWrittenBy)
	if err != nil || links != 0 {
		t.Fatalf("expected cascade to remove links, got %d (%v)", links, err)
	}
	authors, err := store.Count(ctx, domain.TableAuthor)
	if err != nil || authors != 1 {
		t.Fatalf("expected author to remain, got %d (%v)", authors, err)
	}
}

func TestOpenMissingDirectoryIsConnectionFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "nested", "pub.db")
	_, err := Open(context.Background(), path, Options{ConnectAttempts: 2}, nil)
	if err == nil {
		t.Fatalf("expected open to fail")
	}
	if !apperr.Is(err, apperr.ErrConnectionFailure) {
		t.Fatalf("expected connection failure, got %v", err)
	}
}
