package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// numModes is the number of retained EOF modes. The E/C construction only
// ever uses the leading two.
const numModes = 2

// Mode is one empirical orthogonal function of the reference-period anomaly
// field.
type Mode struct {
	// Pattern is the spatial pattern on the fitting grid in area-weighted
	// space, lat-major with longitude fastest. Cells masked out of the fit
	// are NaN.
	Pattern []float64

	// Eigenvalue is the variance of the mode's principal component over
	// the reference period (before normalization).
	Eigenvalue float64

	// ExplainedVariance is the fraction of total reference-period variance
	// carried by the mode.
	ExplainedVariance float64
}

// ModeSet is the immutable result of the EOF decomposition: the retained
// modes plus everything needed to project new data consistently (cell mask,
// reference-period means, area weights). Computed once per reference period
// by FitModes.
type ModeSet struct {
	Lat   []float64
	Lon   []float64
	Modes []Mode

	Reference ReferencePeriod

	mask    []bool    // cells with complete data over the reference period
	mean    []float64 // reference-period time mean per cell
	weights []float64 // sqrt(cos(lat)) per cell
}

// FitModes computes the two leading EOF modes of the field over the
// reference period. The field is restricted to the tropical Pacific fitting
// domain and weighted by sqrt(cos(latitude)) so that equal areas contribute
// equally to the covariance. Grid cells with any missing value during the
// reference period are excluded from the fit.
//
// Mode polarity follows the western Pacific anchor convention; see
// applySignConvention.
func FitModes(field *GriddedField, ref ReferencePeriod) (*ModeSet, error) {
	sub, err := field.Subset(TropicalPacificBox)
	if err != nil {
		return nil, fmt.Errorf("fit modes: %w", err)
	}
	i0, i1, err := sub.timeSlice(ref)
	if err != nil {
		return nil, fmt.Errorf("fit modes: %w", err)
	}
	nT := i1 - i0
	if nT <= numModes {
		return nil, fmt.Errorf("%w: reference period holds %d time steps, need more than %d",
			ErrInvalidField, nT, numModes)
	}

	nLat, nLon := len(sub.Lat), len(sub.Lon)
	nCell := nLat * nLon

	m := &ModeSet{
		Lat:       sub.Lat,
		Lon:       sub.Lon,
		Reference: ref,
		mask:      make([]bool, nCell),
		mean:      make([]float64, nCell),
		weights:   make([]float64, nCell),
	}

	var valid []int
	for j := 0; j < nLat; j++ {
		w := math.Sqrt(math.Cos(sub.Lat[j] * math.Pi / 180))
		for i := 0; i < nLon; i++ {
			c := j*nLon + i
			m.weights[c] = w

			complete := true
			sum := 0.0
			for t := i0; t < i1; t++ {
				v := sub.At(t, j, i)
				if !isFinite(v) {
					complete = false
					break
				}
				sum += v
			}
			if complete {
				m.mask[c] = true
				m.mean[c] = sum / float64(nT)
				valid = append(valid, c)
			}
		}
	}
	if len(valid) < numModes {
		return nil, fmt.Errorf("%w: only %d grid cells have complete reference-period data",
			ErrInvalidField, len(valid))
	}

	// Anomaly matrix in weighted space: rows are reference-period time
	// steps, columns are unmasked cells.
	x := mat.NewDense(nT, len(valid), nil)
	for t := 0; t < nT; t++ {
		for k, c := range valid {
			x.Set(t, k, (sub.Values[(i0+t)*nCell+c]-m.mean[c])*m.weights[c])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil, fmt.Errorf("fit modes: SVD did not converge")
	}
	s := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	total := 0.0
	for _, sv := range s {
		total += sv * sv
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: field has no variance over the reference period",
			ErrDegenerateVariance)
	}

	m.Modes = make([]Mode, numModes)
	for k := 0; k < numModes; k++ {
		eig := s[k] * s[k] / float64(nT-1)
		if eig == 0 {
			return nil, fmt.Errorf("%w: mode %d", ErrDegenerateVariance, k+1)
		}
		pattern := make([]float64, nCell)
		for c := range pattern {
			pattern[c] = math.NaN()
		}
		for kk, c := range valid {
			pattern[c] = v.At(kk, k)
		}
		m.Modes[k] = Mode{
			Pattern:           pattern,
			Eigenvalue:        eig,
			ExplainedVariance: s[k] * s[k] / total,
		}
	}

	if err := m.applySignConvention(); err != nil {
		return nil, fmt.Errorf("fit modes: %w", err)
	}
	return m, nil
}

// applySignConvention enforces the deterministic polarity rule: each mode's
// pattern mean over the western Pacific anchor box must be positive. A mode
// failing the rule has its whole pattern negated, which flips the projected
// principal component by the same factor, so downstream E/C values are
// independent of the sign the SVD happened to return.
func (m *ModeSet) applySignConvention() error {
	for k := range m.Modes {
		mean, n := m.anchorMean(m.Modes[k].Pattern)
		if n == 0 {
			return fmt.Errorf("%w: no valid cells in sign anchor box", ErrInvalidField)
		}
		if mean < 0 {
			p := m.Modes[k].Pattern
			for c := range p {
				p[c] = -p[c]
			}
		}
	}
	return nil
}

// anchorMean averages a pattern over the unmasked cells of the western
// Pacific anchor box, returning the mean and the cell count.
func (m *ModeSet) anchorMean(pattern []float64) (float64, int) {
	sum, n := 0.0, 0
	for j, lat := range m.Lat {
		for i, lon := range m.Lon {
			c := j*len(m.Lon) + i
			if !m.mask[c] || !WestPacificBox.Contains(lat, lon) {
				continue
			}
			sum += pattern[c]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Project projects the full anomaly series onto the fitted modes and returns
// one principal component per mode, each normalized to unit variance over
// the reference period via the inverse square root of the mode eigenvalue.
// The field must share the fitting grid. Time steps with a missing value at
// any unmasked cell come out as NaN.
func (m *ModeSet) Project(field *GriddedField) ([][]float64, error) {
	sub, err := field.Subset(TropicalPacificBox)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if !equalAxes(sub.Lat, m.Lat) || !equalAxes(sub.Lon, m.Lon) {
		return nil, fmt.Errorf("%w: field grid does not match the fitted mode grid", ErrInvalidField)
	}

	nCell := len(m.Lat) * len(m.Lon)
	pcs := make([][]float64, len(m.Modes))
	for k := range pcs {
		pcs[k] = make([]float64, len(sub.Time))
	}

	for t := range sub.Time {
		row := sub.Values[t*nCell : (t+1)*nCell]
		for k, mode := range m.Modes {
			scale := 1 / math.Sqrt(mode.Eigenvalue)
			sum := 0.0
			for c, on := range m.mask {
				if !on {
					continue
				}
				// NaN input propagates into the component.
				sum += (row[c] - m.mean[c]) * m.weights[c] * mode.Pattern[c]
			}
			pcs[k][t] = sum * scale
		}
	}
	return pcs, nil
}

func equalAxes(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
