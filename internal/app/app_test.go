package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PublicationIndex/internal/config"
	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/logging"
	"PublicationIndex/internal/query"
)

const corpus = "<pub>\n" +
	"\t<ID>1</ID>\n" +
	"\t<title>Wired End To End</title>\n" +
	"\t<year>2004</year>\n" +
	"\t<booktitle>ICDE</booktitle>\n" +
	"\t<authors>\n" +
	"\t\t<author>Ann Smith</author>\n" +
	"\t</authors>\n" +
	"</pub>\n"

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.xml")
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpus), 0o644))

	return config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "pub.db"), ConnectAttempts: 1},
		Logging:  config.LoggingConfig{Level: "error"},
		Ingest:   config.IngestConfig{CorpusPath: corpusPath, RepairStrategy: "markup", ProgressSteps: 10},
		Query:    config.QueryConfig{Format: "json"},
	}
}

func TestApplicationIngestAndQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t)
	application, err := New(ctx, cfg, logging.NewWithWriter(os.Stderr, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	report, err := application.Ingest(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, int64(1), report.Counts[domain.TableAuthor])

	results, err := application.Catalog().Search(ctx, query.Criteria{Venue: "icde", Exact: true})
	require.NoError(t, err)
	require.Len(t, results.Items, 1)
	assert.Equal(t, "Wired End To End", results.Items[0].Title)
}

func TestApplicationUnknownRepairStrategy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Ingest.RepairStrategy = "guess"
	application, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	_, err = application.Ingest(ctx, "", false)
	assert.ErrorContains(t, err, "guess")
}

func TestApplicationUnreachableStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "no", "such", "dir", "pub.db")

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrConnectionFailure))
}
