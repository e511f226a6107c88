package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oceanobs/ecindex/internal/domain"
)

// FieldLoader reads a gridded anomaly field from a dataset path.
type FieldLoader interface {
	Load(ctx context.Context, path string) (*domain.GriddedField, error)
}

// IndexComputer implements Computer on top of the domain index calculator,
// selecting a loader by the dataset's declared format.
type IndexComputer struct {
	loaders map[string]FieldLoader
	ref     domain.ReferencePeriod
	logger  *slog.Logger
}

// NewIndexComputer creates an IndexComputer. The loaders map is keyed by
// catalog format strings such as "netcdf" and "csv".
func NewIndexComputer(loaders map[string]FieldLoader, ref domain.ReferencePeriod, logger *slog.Logger) *IndexComputer {
	return &IndexComputer{
		loaders: loaders,
		ref:     ref,
		logger:  logger,
	}
}

// Compute loads the dataset's field and runs the full E/C recipe. A series
// too short for the nonlinearity fit still yields a result, just without
// alpha; every other failure aborts the dataset.
func (c *IndexComputer) Compute(ctx context.Context, ds domain.Dataset) (domain.IndexResult, error) {
	loader, ok := c.loaders[ds.Format]
	if !ok {
		return domain.IndexResult{}, fmt.Errorf("no loader for format %q", ds.Format)
	}

	field, err := loader.Load(ctx, ds.Path)
	if err != nil {
		return domain.IndexResult{}, fmt.Errorf("load %s: %w", ds.Path, err)
	}

	indices, err := domain.ComputeIndices(field, c.ref)
	if err != nil {
		return domain.IndexResult{}, fmt.Errorf("compute indices for %s: %w", ds.Key(), err)
	}

	alpha, err := domain.FitAlpha(indices.Time, indices.PC1, indices.PC2)
	if err != nil {
		if !errors.Is(err, domain.ErrUnderdeterminedFit) {
			return domain.IndexResult{}, fmt.Errorf("fit alpha for %s: %w", ds.Key(), err)
		}
		c.logger.Warn("too few DJF seasons, exporting without alpha",
			"dataset", ds.Key(), "error", err)
		alpha = nil
	}

	return domain.IndexResult{Dataset: ds, Indices: indices, Alpha: alpha}, nil
}
