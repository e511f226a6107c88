package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanobs/ecindex/internal/domain"
	"github.com/oceanobs/ecindex/internal/observability"
)

type stubSource struct {
	entries []domain.Dataset
	err     error
}

func (s *stubSource) Entries(context.Context) ([]domain.Dataset, error) {
	return s.entries, s.err
}

type stubComputer struct {
	failFor map[string]error
	calls   []string
}

func (c *stubComputer) Compute(_ context.Context, ds domain.Dataset) (domain.IndexResult, error) {
	c.calls = append(c.calls, ds.SourceID)
	if err := c.failFor[ds.SourceID]; err != nil {
		return domain.IndexResult{}, err
	}
	return domain.IndexResult{Dataset: ds, Indices: &domain.Indices{}}, nil
}

type stubWriter struct {
	failFor map[string]error
	written []string
}

func (w *stubWriter) Write(_ context.Context, res domain.IndexResult) error {
	if err := w.failFor[res.Dataset.SourceID]; err != nil {
		return err
	}
	w.written = append(w.written, res.Dataset.SourceID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func datasets(ids ...string) []domain.Dataset {
	out := make([]domain.Dataset, len(ids))
	for i, id := range ids {
		out[i] = domain.Dataset{SourceID: id, Format: "csv", Path: id + ".csv"}
	}
	return out
}

func TestRun_ProcessesAllEntries(t *testing.T) {
	source := &stubSource{entries: datasets("a", "b", "c")}
	computer := &stubComputer{}
	writer := &stubWriter{}
	p := New(source, computer, writer, discardLogger(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 3}, sum)
	assert.Equal(t, []string{"a", "b", "c"}, computer.calls)
	assert.Equal(t, []string{"a", "b", "c"}, writer.written)
}

func TestRun_SkipsFailedDatasets(t *testing.T) {
	source := &stubSource{entries: datasets("a", "b", "c")}
	computer := &stubComputer{failFor: map[string]error{"b": errors.New("corrupt grid")}}
	writer := &stubWriter{}
	p := New(source, computer, writer, discardLogger(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 2, Failed: 1}, sum)
	assert.Equal(t, []string{"a", "c"}, writer.written)
}

func TestRun_CountsExportFailures(t *testing.T) {
	source := &stubSource{entries: datasets("a", "b")}
	writer := &stubWriter{failFor: map[string]error{"a": errors.New("disk full")}}
	p := New(source, &stubComputer{}, writer, discardLogger(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Failed: 1}, sum)
}

func TestRun_CatalogError(t *testing.T) {
	source := &stubSource{err: errors.New("no such file")}
	p := New(source, &stubComputer{}, &stubWriter{}, discardLogger(), observability.NewMetricsForTesting())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}

func TestRun_ContextCancelled(t *testing.T) {
	source := &stubSource{entries: datasets("a", "b")}
	computer := &stubComputer{}
	p := New(source, computer, &stubWriter{}, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, computer.calls)
}

func TestCheckReadiness(t *testing.T) {
	source := &stubSource{entries: datasets("a")}
	p := New(source, &stubComputer{}, &stubWriter{}, discardLogger(), observability.NewMetricsForTesting())

	require.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestStatus(t *testing.T) {
	source := &stubSource{entries: datasets("a", "b", "c")}
	computer := &stubComputer{failFor: map[string]error{"b": errors.New("corrupt grid")}}
	p := New(source, computer, &stubWriter{}, discardLogger(), observability.NewMetricsForTesting())

	assert.Equal(t, Status{}, p.Status())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Status{Datasets: 3, Processed: 2, Failed: 1}, p.Status())
}
