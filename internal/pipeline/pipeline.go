package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oceanobs/ecindex/internal/domain"
	"github.com/oceanobs/ecindex/internal/observability"
)

// CatalogSource lists the datasets to process.
type CatalogSource interface {
	Entries(ctx context.Context) ([]domain.Dataset, error)
}

// Computer derives the E/C indices and alpha fit for one dataset.
type Computer interface {
	Compute(ctx context.Context, ds domain.Dataset) (domain.IndexResult, error)
}

// ResultWriter persists one computed result.
type ResultWriter interface {
	Write(ctx context.Context, res domain.IndexResult) error
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Processed int
	Failed    int
}

// Status is a point-in-time snapshot of run progress, safe to read from
// other goroutines while Run is executing.
type Status struct {
	Running   bool `json:"running"`
	Datasets  int  `json:"datasets"`
	Processed int  `json:"processed"`
	Failed    int  `json:"failed"`
}

// Pipeline runs the catalog-compute-export loop once over all datasets.
// Unlike a streaming consumer it has a natural end: the catalog is finite,
// and each entry is attempted exactly once.
type Pipeline struct {
	source   CatalogSource
	computer Computer
	writer   ResultWriter
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	running   atomic.Bool
	datasets  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a Pipeline with the given stages and observability.
func New(source CatalogSource, computer Computer, writer ResultWriter, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   source,
		computer: computer,
		writer:   writer,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the pipeline has exported at least one
// result, or an error describing why it is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not exported any results yet")
	}
	return nil
}

// Status reports how far the current (or finished) run has progressed.
func (p *Pipeline) Status() Status {
	return Status{
		Running:   p.running.Load(),
		Datasets:  int(p.datasets.Load()),
		Processed: int(p.processed.Load()),
		Failed:    int(p.failed.Load()),
	}
}

// Run processes every catalog entry once and returns a summary. Per-dataset
// failures are logged, counted, and skipped; Run itself only errors when the
// catalog cannot be read or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.metrics.PipelineRunning.Set(1)
	p.running.Store(true)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.running.Store(false)
	}()

	entries, err := p.source.Entries(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read catalog: %w", err)
	}
	p.datasets.Store(int64(len(entries)))
	p.logger.Info("pipeline started", "datasets", len(entries))

	var sum Summary
	for _, ds := range entries {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return sum, err
		}

		start := time.Now()
		res, err := p.computer.Compute(ctx, ds)
		if err != nil {
			p.logger.Warn("compute failed, skipping dataset",
				"error", err,
				"source_id", ds.SourceID,
				"member_id", ds.MemberID,
				"path", ds.Path,
			)
			p.metrics.DatasetsFailed.Inc()
			p.failed.Add(1)
			sum.Failed++
			continue
		}
		p.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
		p.metrics.FieldTimeSteps.Observe(float64(len(res.Indices.Time)))
		if res.Alpha == nil {
			p.metrics.AlphaSkipped.Inc()
		}

		if err := p.writer.Write(ctx, res); err != nil {
			p.logger.Error("export failed", "error", err, "dataset", ds.Key())
			p.metrics.ExportErrors.Inc()
			p.failed.Add(1)
			sum.Failed++
			continue
		}

		p.metrics.DatasetsProcessed.Inc()
		p.processed.Add(1)
		sum.Processed++
		p.ready.Store(true)
	}

	p.logger.Info("pipeline finished", "processed", sum.Processed, "failed", sum.Failed)
	return sum, nil
}
