// Package export persists computed index results to disk: one CSV with the
// monthly index series and one JSON document with the alpha fit per dataset.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oceanobs/ecindex/internal/domain"
)

// seriesHeader is the column layout of an exported index CSV.
var seriesHeader = []string{"time", "pc1", "pc2", "e_index", "c_index"}

// Writer writes results under a base directory. It implements
// pipeline.ResultWriter.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir; the directory is created on the
// first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Write stores res.Dataset's results as <key>_ec.csv and, when an alpha fit
// is present, <key>_alpha.json.
func (w *Writer) Write(_ context.Context, res domain.IndexResult) error {
	if err := res.Indices.Validate(); err != nil {
		return fmt.Errorf("refusing to export %s: %w", res.Dataset.Key(), err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(w.dir, res.Dataset.Key()+"_ec.csv")
	if err := writeSeries(csvPath, res.Indices); err != nil {
		return err
	}
	w.logger.Info("exported index series", "path", csvPath, "steps", len(res.Indices.Time))

	if res.Alpha == nil {
		return nil
	}
	alphaPath := filepath.Join(w.dir, res.Dataset.Key()+"_alpha.json")
	if err := writeAlpha(alphaPath, res.Alpha); err != nil {
		return err
	}
	w.logger.Info("exported alpha fit", "path", alphaPath, "alpha", res.Alpha.Alpha)
	return nil
}

func writeSeries(path string, ix *domain.Indices) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(seriesHeader); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i, t := range ix.Time {
		row := []string{
			t.Format(time.DateOnly),
			formatValue(ix.PC1[i]),
			formatValue(ix.PC2[i]),
			formatValue(ix.E[i]),
			formatValue(ix.C[i]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// formatValue renders a float with full round-trip precision; NaN comes out
// as the literal "NaN", which ParseFloat reads back.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// AlphaDoc is the serialized form of a nonlinearity fit.
type AlphaDoc struct {
	Alpha        float64   `json:"alpha"`
	Coefficients []float64 `json:"coefficients"` // ascending degree order
	Seasons      int       `json:"seasons"`
	CurveX       []float64 `json:"curve_x"`
	CurveY       []float64 `json:"curve_y"`
	ComputedAt   time.Time `json:"computed_at"`
}

func writeAlpha(path string, fit *domain.AlphaFit) error {
	doc := AlphaDoc{
		Alpha:        fit.Alpha,
		Coefficients: fit.Coeffs[:],
		Seasons:      len(fit.Seasons),
		CurveX:       fit.CurveX,
		CurveY:       fit.CurveY,
		ComputedAt:   fit.ComputedAt,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alpha fit: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
