// Command validate performs integrity checks on exported index files: the
// monthly E/C series CSV and, optionally, the alpha fit JSON. It verifies the
// time axis, the 45° rotation identities, variance sanity, and consistency
// between the alpha curve and its polynomial coefficients.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -series out/SYNTH_piControl_r1i1p1f1_sst_ec.csv \
//	  -alpha out/SYNTH_piControl_r1i1p1f1_sst_alpha.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/montanaflynn/stats"

	"github.com/oceanobs/ecindex/internal/adapter/export"
)

const tolerance = 1e-9

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	seriesPath := flag.String("series", "", "path to an exported index series CSV")
	alphaPath := flag.String("alpha", "", "path to an exported alpha JSON (optional)")
	flag.Parse()

	if *seriesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*seriesPath, *alphaPath); code != 0 {
		os.Exit(code)
	}
}

func run(seriesPath, alphaPath string) int {
	fmt.Println("=== E/C Index Export Validation ===")
	fmt.Println()

	series, err := export.ReadSeries(seriesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load series: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTimeAxis(series),
		validateRotation(series),
		validateVariance(series),
	}

	if alphaPath != "" {
		doc, err := export.ReadAlpha(alphaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load alpha: %v\n", err)
			return 1
		}
		phases = append(phases, validateAlpha(doc))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func validateTimeAxis(s *export.Series) *phase {
	p := &phase{name: "time axis"}

	if len(s.Time) == 0 {
		p.errorf("series is empty")
		return p
	}
	for i := 1; i < len(s.Time); i++ {
		if !s.Time[i].After(s.Time[i-1]) {
			p.errorf("time not strictly increasing at row %d (%s then %s)",
				i, s.Time[i-1].Format("2006-01-02"), s.Time[i].Format("2006-01-02"))
		}
	}
	fmt.Printf("Series: %d months, %s to %s\n",
		len(s.Time), s.Time[0].Format("2006-01"), s.Time[len(s.Time)-1].Format("2006-01"))
	return p
}

// validateRotation checks the forward identities and the inverse: rotating E
// and C back must recover the principal components.
func validateRotation(s *export.Series) *phase {
	p := &phase{name: "45-degree rotation"}

	for i := range s.Time {
		if math.IsNaN(s.PC1[i]) || math.IsNaN(s.PC2[i]) {
			// Gaps must propagate to both indices, never one.
			if !math.IsNaN(s.E[i]) || !math.IsNaN(s.C[i]) {
				p.errorf("row %d: NaN principal component with finite index", i)
			}
			continue
		}
		e := (s.PC1[i] - s.PC2[i]) / math.Sqrt2
		c := (s.PC1[i] + s.PC2[i]) / math.Sqrt2
		if math.Abs(e-s.E[i]) > tolerance || math.Abs(c-s.C[i]) > tolerance {
			p.errorf("row %d: rotation identity violated (e=%g want %g, c=%g want %g)",
				i, s.E[i], e, s.C[i], c)
			continue
		}
		back1 := (s.E[i] + s.C[i]) / math.Sqrt2
		back2 := (s.C[i] - s.E[i]) / math.Sqrt2
		if math.Abs(back1-s.PC1[i]) > tolerance || math.Abs(back2-s.PC2[i]) > tolerance {
			p.errorf("row %d: inverse rotation does not recover principal components", i)
		}
	}
	return p
}

func validateVariance(s *export.Series) *phase {
	p := &phase{name: "variance sanity"}

	pc1 := finite(s.PC1)
	pc2 := finite(s.PC2)
	if len(pc1) < 2 || len(pc2) < 2 {
		p.errorf("too few finite values to compute variance")
		return p
	}

	for _, col := range []struct {
		name string
		vals []float64
	}{{"pc1", pc1}, {"pc2", pc2}} {
		sd, err := stats.StandardDeviation(col.vals)
		if err != nil {
			p.errorf("%s: %v", col.name, err)
			continue
		}
		if sd == 0 {
			p.errorf("%s: zero variance", col.name)
			continue
		}
		mean, _ := stats.Mean(col.vals)
		lo, _ := stats.Min(col.vals)
		hi, _ := stats.Max(col.vals)
		fmt.Printf("%s: mean=%+.4f sd=%.4f range=[%+.3f, %+.3f]\n", col.name, mean, sd, lo, hi)
	}

	if len(pc1) == len(pc2) {
		if r, err := stats.Correlation(pc1, pc2); err == nil {
			fmt.Printf("corr(pc1, pc2) = %+.4f\n", r)
		}
	}
	return p
}

func validateAlpha(doc *export.AlphaDoc) *phase {
	p := &phase{name: "alpha fit"}

	if len(doc.Coefficients) != 3 {
		p.errorf("expected 3 polynomial coefficients, got %d", len(doc.Coefficients))
		return p
	}
	if doc.Alpha != doc.Coefficients[2] {
		p.errorf("alpha %g does not match quadratic coefficient %g", doc.Alpha, doc.Coefficients[2])
	}
	if doc.Seasons < 3 {
		p.errorf("only %d DJF seasons; a quadratic fit needs at least 3", doc.Seasons)
	}
	if len(doc.CurveX) != len(doc.CurveY) {
		p.errorf("curve arrays differ in length: %d vs %d", len(doc.CurveX), len(doc.CurveY))
		return p
	}
	for i := 1; i < len(doc.CurveX); i++ {
		step := doc.CurveX[i] - doc.CurveX[i-1]
		if math.Abs(step-0.1) > 1e-6 {
			p.errorf("curve step at %d is %g, want 0.1", i, step)
			break
		}
	}
	for i, x := range doc.CurveX {
		want := doc.Coefficients[0] + doc.Coefficients[1]*x + doc.Coefficients[2]*x*x
		if math.Abs(want-doc.CurveY[i]) > tolerance {
			p.errorf("curve point %d: y=%g, polynomial gives %g", i, doc.CurveY[i], want)
			break
		}
	}

	fmt.Printf("alpha=%+.4f over %d seasons, curve %d points\n", doc.Alpha, doc.Seasons, len(doc.CurveX))
	return p
}

func finite(vals []float64) []float64 {
	var out []float64
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
