// Command genmock writes a synthetic tropical Pacific SST anomaly grid and a
// matching catalog, for exercising the full pipeline without real reanalysis
// downloads. The field mixes two orthogonal spatial patterns with ENSO-like
// amplitude cycles plus weather noise, so both EOF modes are recoverable.
//
// It runs the actual index computation on the generated field and prints the
// results, which is where the fixture-based test assertions come from.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -start-year 1970 -months 600
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oceanobs/ecindex/internal/adapter/gridcsv"
	"github.com/oceanobs/ecindex/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for the grid CSV and catalog")
	startYear := flag.Int("start-year", 1970, "first year of the monthly series")
	months := flag.Int("months", 600, "number of monthly time steps")
	seed := flag.Int64("seed", 2011, "noise seed")
	flag.Parse()

	if *months < 24 {
		return fmt.Errorf("need at least 24 months, got %d", *months)
	}

	// Fixed clock for reproducible computed_at timestamps in fixtures.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	gridPath := filepath.Join(*outDir, "sst_synthetic.csv")
	if err := writeGrid(gridPath, *startYear, *months, *seed); err != nil {
		return fmt.Errorf("writing grid: %w", err)
	}
	log.Printf("wrote grid: %s (%d months)", gridPath, *months)

	catalogPath := filepath.Join(*outDir, "catalog.csv")
	if err := writeCatalog(catalogPath, "sst_synthetic.csv"); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote catalog: %s", catalogPath)

	return printComputed(gridPath, *startYear, *months)
}

// grid axes: 5° latitude steps across the index box, 10° longitude steps.
func gridAxes() (lat, lon []float64) {
	for v := -20.0; v <= 20.0; v += 5 {
		lat = append(lat, v)
	}
	for v := 100.0; v <= 280.0; v += 10 {
		lon = append(lon, v)
	}
	return lat, lon
}

// anomaly evaluates the synthetic field at one grid cell. Pattern one peaks
// in the eastern Pacific, pattern two in the central Pacific; both taper
// toward the poleward edges of the box.
func anomaly(t int, lat, lon float64, rng *rand.Rand) float64 {
	u := (lon - 100) / 180
	taper := math.Cos(lat * math.Pi / 60)
	p1 := math.Sin(math.Pi*u) * taper
	p2 := math.Cos(math.Pi*u) * taper

	a1 := 1.8 * math.Sin(2*math.Pi*float64(t)/14.7)
	a2 := 0.9 * math.Cos(2*math.Pi*float64(t)/7.3)
	return a1*p1 + a2*p2 + 0.05*rng.NormFloat64()
}

func writeGrid(path string, startYear, months int, seed int64) error {
	lat, lon := gridAxes()
	rng := rand.New(rand.NewSource(seed))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "lat", "lon", "value"}); err != nil {
		return err
	}
	for t := 0; t < months; t++ {
		date := time.Date(startYear, time.Month(t%12+1), 15, 0, 0, 0, 0, time.UTC).
			AddDate(t/12, 0, 0)
		for _, la := range lat {
			for _, lo := range lon {
				row := []string{
					date.Format(time.DateOnly),
					strconv.FormatFloat(la, 'g', -1, 64),
					strconv.FormatFloat(lo, 'g', -1, 64),
					strconv.FormatFloat(anomaly(t, la, lo, rng), 'g', -1, 64),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeCatalog(path, gridFile string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{
		{"source_id", "experiment", "member_id", "variable", "path", "format"},
		{"SYNTH", "piControl", "r1i1p1f1", "sst", gridFile, "csv"},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// printComputed runs the real computation on the generated field and prints
// the numbers the loader and pipeline tests assert against.
func printComputed(gridPath string, startYear, months int) error {
	field, err := gridcsv.Loader{}.Load(context.Background(), gridPath)
	if err != nil {
		return fmt.Errorf("reload grid: %w", err)
	}

	// Use the full generated series as the reference period. The bounds must
	// sit on actual timestamps, and samples land on the 15th of each month.
	refStart := time.Date(startYear, time.January, 15, 0, 0, 0, 0, time.UTC)
	ref, err := domain.NewReferencePeriod(refStart, refStart.AddDate(0, months-1, 0))
	if err != nil {
		return err
	}

	ix, err := domain.ComputeIndices(field, ref)
	if err != nil {
		return fmt.Errorf("compute indices: %w", err)
	}

	fmt.Println("\n=== Computed on synthetic field ===")
	fmt.Printf("Time steps: %d\n", len(ix.Time))
	for i, m := range ix.Modes.Modes {
		fmt.Printf("Mode %d: eigenvalue=%.6f explained=%.4f\n", i+1, m.Eigenvalue, m.ExplainedVariance)
	}
	fmt.Printf("First month: pc1=%.6f pc2=%.6f e=%.6f c=%.6f\n", ix.PC1[0], ix.PC2[0], ix.E[0], ix.C[0])

	fit, err := domain.FitAlpha(ix.Time, ix.PC1, ix.PC2)
	if err != nil {
		fmt.Printf("Alpha: not available (%v)\n", err)
		return nil
	}
	fmt.Printf("Alpha: %.6f over %d DJF seasons\n", fit.Alpha, len(fit.Seasons))
	fmt.Printf("Curve: %d points from %.2f to %.2f\n", len(fit.CurveX), fit.CurveX[0], fit.CurveX[len(fit.CurveX)-1])
	return nil
}
