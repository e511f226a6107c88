package domain

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// alphaStartYear excludes DJF seasons labeled before 1980 from the
// nonlinearity fit, matching Takahashi et al. (2011).
const alphaStartYear = 1980

// curveStep is the sampling interval of the fitted parabola returned for
// plotting.
const curveStep = 0.1

// AlphaFit is the quadratic least-squares fit of winter PC2 against winter
// PC1. Alpha, the quadratic coefficient, measures the nonlinearity between
// the two leading modes of tropical Pacific variability.
type AlphaFit struct {
	// Alpha is the coefficient of the quadratic term.
	Alpha float64

	// Coeffs are the fitted polynomial coefficients in ascending degree
	// order: intercept, linear, quadratic.
	Coeffs [3]float64

	// Seasons are the DJF means the fit was computed from.
	Seasons []SeasonMean

	// CurveX and CurveY sample the fitted parabola over the observed PC1
	// range at step 0.1, for plotting against the seasonal scatter.
	CurveX []float64
	CurveY []float64

	ComputedAt time.Time
}

// FitAlpha derives the nonlinearity coefficient from monthly principal
// component series: keep December, January, and February, aggregate into
// December-anchored seasonal means (dropping incomplete seasons), discard
// seasons labeled before 1980, and fit PC2 = c0 + c1*PC1 + c2*PC1² by least
// squares. Fails with ErrUnderdeterminedFit when fewer than three seasonal
// points remain.
func FitAlpha(times []time.Time, pc1, pc2 []float64) (*AlphaFit, error) {
	if len(times) != len(pc1) || len(times) != len(pc2) {
		return nil, fmt.Errorf("fit alpha: series lengths differ: %d times, %d pc1, %d pc2",
			len(times), len(pc1), len(pc2))
	}

	var seasons []SeasonMean
	for _, s := range djfMeans(times, pc1, pc2) {
		if s.Year >= alphaStartYear {
			seasons = append(seasons, s)
		}
	}
	if len(seasons) < 3 {
		return nil, fmt.Errorf("%w: have %d complete DJF seasons, need at least 3",
			ErrUnderdeterminedFit, len(seasons))
	}

	x := make([]float64, len(seasons))
	y := make([]float64, len(seasons))
	for i, s := range seasons {
		x[i] = s.PC1
		y[i] = s.PC2
	}

	coeffs, err := polyfit(x, y, 2)
	if err != nil {
		return nil, fmt.Errorf("fit alpha: %w", err)
	}

	fit := &AlphaFit{
		Alpha:      coeffs[2],
		Coeffs:     [3]float64{coeffs[0], coeffs[1], coeffs[2]},
		Seasons:    seasons,
		ComputedAt: clock.Now().UTC(),
	}
	fit.CurveX, fit.CurveY = sampleCurve(fit.Coeffs, floats.Min(x), floats.Max(x))
	return fit, nil
}

// polyfit solves the least-squares polynomial fit of the given degree via a
// QR factorization of the Vandermonde matrix. Coefficients come back in
// ascending degree order.
func polyfit(x, y []float64, degree int) ([]float64, error) {
	a := mat.NewDense(len(x), degree+1, nil)
	for i, xi := range x {
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= xi
		}
	}
	b := mat.NewDense(len(y), 1, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}

	coeffs := make([]float64, degree+1)
	for j := range coeffs {
		coeffs[j] = sol.At(j, 0)
	}
	return coeffs, nil
}

// sampleCurve evaluates the fitted parabola from lo to hi at curveStep.
// The endpoint is included up to floating-point slack.
func sampleCurve(coeffs [3]float64, lo, hi float64) (xs, ys []float64) {
	for i := 0; ; i++ {
		x := lo + float64(i)*curveStep
		if x > hi+1e-9 {
			break
		}
		xs = append(xs, x)
		ys = append(ys, coeffs[0]+coeffs[1]*x+coeffs[2]*x*x)
	}
	return xs, ys
}
