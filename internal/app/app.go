package app

import (
	"context"
	"fmt"
	"log/slog"

	"PublicationIndex/internal/config"
	"PublicationIndex/internal/format"
	"PublicationIndex/internal/infrastructure/parser"
	"PublicationIndex/internal/infrastructure/storage"
	"PublicationIndex/internal/logging"
	"PublicationIndex/internal/repair"
	"PublicationIndex/internal/usecase"
	"PublicationIndex/internal/validation"
)

// Application wires configs to use cases and owns the store connection.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.SQLiteStore
	ingestor *usecase.Ingestor
	catalog  *usecase.Catalog
}

// New opens the store and builds the ingestion and catalog use cases.
// A store that cannot be opened aborts startup with a ConnectionFailure.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.Path, storage.Options{
		ConnectAttempts: cfg.Database.ConnectAttempts,
		ConnectDelay:    cfg.Database.ConnectDelay,
	}, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, err
	}

	ids, err := usecase.NewIdentityAllocator(ctx, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seed identity allocator: %w", err)
	}

	source := parser.NewCorpusSource(repair.NewRegistry(), cfg.Ingest.RepairStrategy, baseLogger.With("component", "source"))

	ingestor := usecase.NewIngestor(usecase.IngestDeps{
		Source:        source,
		Store:         store,
		Allocator:     ids,
		Logger:        baseLogger.With("component", "ingest"),
		ProgressSteps: cfg.Ingest.ProgressSteps,
	})

	catalog := usecase.NewCatalog(usecase.CatalogDeps{
		Store:     store,
		Allocator: ids,
		Formats:   format.NewRegistry(),
		Validator: validation.New(),
		Logger:    baseLogger.With("component", "catalog"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		ingestor: ingestor,
		catalog:  catalog,
	}, nil
}

// Ingest loads the corpus at path, or the configured corpus when path is empty.
func (a *Application) Ingest(ctx context.Context, path string, force bool) (usecase.IngestReport, error) {
	if path == "" {
		path = a.cfg.Ingest.CorpusPath
	}
	return a.ingestor.Run(ctx, path, force)
}

// Catalog exposes the interactive publication API.
func (a *Application) Catalog() *usecase.Catalog {
	return a.catalog
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Close releases the store connection.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
