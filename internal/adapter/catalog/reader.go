// Package catalog reads dataset catalogs in the flat CSV form produced by
// exporting an ESM collection listing: one row per stored dataset, with the
// attribute columns used for querying plus the storage path.
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oceanobs/ecindex/internal/domain"
)

// columns required in the catalog header, in any order.
var requiredColumns = []string{"source_id", "experiment", "member_id", "variable", "path", "format"}

// Filter narrows catalog entries by exact attribute match; empty fields
// match everything, mirroring an intake-style catalog query.
type Filter struct {
	Variable   string
	Experiment string
	MemberID   string
}

func (f Filter) matches(ds domain.Dataset) bool {
	if f.Variable != "" && ds.Variable != f.Variable {
		return false
	}
	if f.Experiment != "" && ds.Experiment != f.Experiment {
		return false
	}
	if f.MemberID != "" && ds.MemberID != f.MemberID {
		return false
	}
	return true
}

// Reader loads and filters a CSV catalog. It implements
// pipeline.CatalogSource.
type Reader struct {
	path   string
	filter Filter
}

// NewReader creates a catalog Reader for the given CSV path.
func NewReader(path string, filter Filter) *Reader {
	return &Reader{path: path, filter: filter}
}

// Entries parses the catalog and returns the datasets matching the filter.
// Relative dataset paths are resolved against the catalog file's directory.
func (r *Reader) Entries(_ context.Context) ([]domain.Dataset, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("catalog %s: missing column %q", r.path, name)
		}
	}

	baseDir := filepath.Dir(r.path)
	var entries []domain.Dataset
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog %s line %d: %w", r.path, line, err)
		}

		ds := domain.Dataset{
			SourceID:   row[col["source_id"]],
			Experiment: row[col["experiment"]],
			MemberID:   row[col["member_id"]],
			Variable:   row[col["variable"]],
			Path:       row[col["path"]],
			Format:     row[col["format"]],
		}
		if ds.Path == "" {
			return nil, fmt.Errorf("catalog %s line %d: empty path", r.path, line)
		}
		if !filepath.IsAbs(ds.Path) {
			ds.Path = filepath.Join(baseDir, ds.Path)
		}
		if r.filter.matches(ds) {
			entries = append(entries, ds)
		}
	}
	return entries, nil
}
