package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/ports"
)

const (
	savepointRecord = "SAVEPOINT ingest_record"
	rollbackRecord  = "ROLLBACK TO SAVEPOINT ingest_record"
	releaseRecord   = "RELEASE SAVEPOINT ingest_record"
)

// IngestDeps wires the driven adapters into the ingestion use case.
type IngestDeps struct {
	Source    ports.CorpusSource
	Store     ports.PublicationStore
	Allocator *IdentityAllocator
	Logger    *slog.Logger
	// ProgressSteps is how many progress lines a run logs; zero disables them.
	ProgressSteps int
}

// Ingestor implements the parse-and-load workflow.
type Ingestor struct {
	source        ports.CorpusSource
	store         ports.PublicationStore
	ids           *IdentityAllocator
	logger        *slog.Logger
	progressSteps int
}

// RecordError reports one record that was skipped during ingestion.
type RecordError struct {
	// Index is the position in the parsed publication list, -1 for parse rejections.
	Index     int
	SourceKey string
	Title     string
	Err       error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (id %q, title %q): %v", e.Index, e.SourceKey, e.Title, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID       string
	Parsed      int
	Repaired    int
	EmptyBlocks int
	Inserted    int
	Errors      []error
	// Counts holds the row count of each relation after the run.
	Counts map[domain.Table]int64
}

// NewIngestor constructs the ingestion component.
func NewIngestor(deps IngestDeps) *Ingestor {
	return &Ingestor{
		source:        deps.Source,
		store:         deps.Store,
		ids:           deps.Allocator,
		logger:        deps.Logger,
		progressSteps: deps.ProgressSteps,
	}
}

// Run parses the corpus at path and loads it in one transaction. Records that
// fail to parse or insert are skipped and reported; they never stop the batch.
// A store that already holds publications is refused unless force is set.
func (i *Ingestor) Run(ctx context.Context, path string, force bool) (IngestReport, error) {
	report := IngestReport{RunID: uuid.NewString()}
	if i.source == nil || i.store == nil || i.ids == nil {
		return report, fmt.Errorf("ingestor is not fully configured")
	}

	existing, err := i.store.Count(ctx, domain.TablePublication)
	if err != nil {
		return report, fmt.Errorf("count publications: %w", err)
	}
	if existing > 0 && !force {
		return report, apperr.Validationf("store already holds %d publications", existing)
	}

	parsed, err := i.source.Load(ctx, path)
	if err != nil {
		return report, fmt.Errorf("load corpus: %w", err)
	}
	report.Parsed = len(parsed.Publications)
	report.Repaired = parsed.Repaired
	report.EmptyBlocks = parsed.EmptyBlocks
	for _, rejected := range parsed.Rejected {
		report.Errors = append(report.Errors, RecordError{Index: -1, Err: rejected})
	}

	i.info("ingest started", "run_id", report.RunID, "records", report.Parsed)

	tx, err := i.store.Begin(ctx)
	if err != nil {
		return report, fmt.Errorf("begin ingest: %w", err)
	}

	// Allocations become visible to other users of the allocator only once
	// the transaction has committed.
	session := i.ids.Fork()

	marks := progressMarks(len(parsed.Publications), i.progressSteps)
	for idx, pub := range parsed.Publications {
		if err := ctx.Err(); err != nil {
			_ = tx.Rollback()
			return report, err
		}

		staged := session.Stage(pub)
		if err := i.insertRecord(ctx, tx, staged); err != nil {
			recErr := RecordError{Index: idx, SourceKey: pub.SourceKey, Title: pub.Title, Err: err}
			report.Errors = append(report.Errors, recErr)
			i.warn("record skipped", "run_id", report.RunID, "error", recErr, "record", pub)
		} else {
			session.Commit(staged)
			report.Inserted++
		}

		if pct, ok := marks[idx]; ok {
			i.info("ingest progress", "run_id", report.RunID, "percent", pct)
		}
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit ingest: %w", err)
	}
	i.ids.Adopt(session)

	report.Counts, err = tableCounts(ctx, i.store)
	if err != nil {
		return report, err
	}

	i.info("ingest finished",
		"run_id", report.RunID,
		"inserted", report.Inserted,
		"skipped", len(report.Errors),
		"publication", report.Counts[domain.TablePublication],
		"author", report.Counts[domain.TableAuthor],
		"written_by", report.Counts[domain.TableWrittenBy])
	return report, nil
}

// insertRecord writes one record inside its own savepoint so a failure
// rolls back only that record.
func (i *Ingestor) insertRecord(ctx context.Context, tx ports.Tx, staged Staged) error {
	if _, err := tx.ExecContext(ctx, savepointRecord); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if err := storePublication(ctx, tx, staged); err != nil {
		if _, rbErr := tx.ExecContext(ctx, rollbackRecord); rbErr != nil {
			return apperr.Join(err, fmt.Errorf("rollback savepoint: %w", rbErr))
		}
		if _, relErr := tx.ExecContext(ctx, releaseRecord); relErr != nil {
			return apperr.Join(err, fmt.Errorf("release savepoint: %w", relErr))
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, releaseRecord); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// progressMarks maps record indexes to the percentage logged after them.
func progressMarks(total, steps int) map[int]int {
	marks := map[int]int{}
	if total == 0 || steps <= 0 {
		return marks
	}
	for s := 1; s <= steps; s++ {
		idx := total*s/steps - 1
		if idx >= 0 {
			marks[idx] = s * 100 / steps
		}
	}
	return marks
}

func tableCounts(ctx context.Context, store ports.PublicationStore) (map[domain.Table]int64, error) {
	counts := map[domain.Table]int64{}
	for _, table := range []domain.Table{domain.TablePublication, domain.TableAuthor, domain.TableWrittenBy} {
		n, err := store.Count(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func (i *Ingestor) info(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}

func (i *Ingestor) warn(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}
