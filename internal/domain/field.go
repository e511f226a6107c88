package domain

import (
	"fmt"
	"math"
	"time"
)

// Box is a closed latitude/longitude region. Longitudes use the 0-360
// convention, so the tropical Pacific is a single contiguous interval.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Analysis regions from Takahashi et al. (2011).
var (
	// TropicalPacificBox is the domain the EOF modes are fitted over.
	TropicalPacificBox = Box{LatMin: -20, LatMax: 20, LonMin: 100, LonMax: 280}

	// WestPacificBox anchors the mode polarity convention: a mode's
	// spatial pattern must have a positive mean over this box. SVD sign
	// choice is arbitrary, so without this rule two runs could return
	// E and C with opposite polarity.
	WestPacificBox = Box{LatMin: -5, LatMax: 5, LonMin: 140, LonMax: 180}
)

// Contains reports whether the point lies inside the box, boundaries included.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// GriddedField is a (time, lat, lon) grid of sea-surface-temperature anomaly
// values in °C, already referenced to a climatology by the producer. Values
// are stored flat with time varying slowest and longitude fastest. NaN marks
// missing data.
type GriddedField struct {
	Time   []time.Time
	Lat    []float64 // degrees north, strictly ascending
	Lon    []float64 // degrees east on 0-360, strictly ascending
	Values []float64 // len(Time) * len(Lat) * len(Lon)
}

// NewGriddedField builds a field and validates the axis invariants.
func NewGriddedField(times []time.Time, lat, lon, values []float64) (*GriddedField, error) {
	f := &GriddedField{Time: times, Lat: lat, Lon: lon, Values: values}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *GriddedField) validate() error {
	if len(f.Time) == 0 || len(f.Lat) == 0 || len(f.Lon) == 0 {
		return fmt.Errorf("%w: empty time, lat, or lon axis", ErrInvalidField)
	}
	if want := len(f.Time) * len(f.Lat) * len(f.Lon); len(f.Values) != want {
		return fmt.Errorf("%w: have %d values, want %d", ErrInvalidField, len(f.Values), want)
	}
	for i := 1; i < len(f.Lat); i++ {
		if f.Lat[i] <= f.Lat[i-1] {
			return fmt.Errorf("%w: latitude not strictly ascending at index %d", ErrInvalidField, i)
		}
	}
	for i, lon := range f.Lon {
		if lon < 0 || lon > 360 {
			return fmt.Errorf("%w: longitude %g outside 0-360 at index %d", ErrInvalidField, lon, i)
		}
		if i > 0 && lon <= f.Lon[i-1] {
			return fmt.Errorf("%w: longitude not strictly ascending at index %d", ErrInvalidField, i)
		}
	}
	for i := 1; i < len(f.Time); i++ {
		if !f.Time[i].After(f.Time[i-1]) {
			return fmt.Errorf("%w: time not strictly increasing at index %d", ErrInvalidField, i)
		}
	}
	return nil
}

// At returns the value at time index t, latitude index j, longitude index i.
func (f *GriddedField) At(t, j, i int) float64 {
	return f.Values[(t*len(f.Lat)+j)*len(f.Lon)+i]
}

// Subset returns a copy of the field restricted to grid points inside box.
// The time axis is shared with the receiver.
func (f *GriddedField) Subset(box Box) (*GriddedField, error) {
	var js, is []int
	for j, lat := range f.Lat {
		if lat >= box.LatMin && lat <= box.LatMax {
			js = append(js, j)
		}
	}
	for i, lon := range f.Lon {
		if lon >= box.LonMin && lon <= box.LonMax {
			is = append(is, i)
		}
	}
	if len(js) == 0 || len(is) == 0 {
		return nil, fmt.Errorf("%w: no grid points inside box [%g,%g]x[%g,%g]",
			ErrInvalidField, box.LatMin, box.LatMax, box.LonMin, box.LonMax)
	}

	sub := &GriddedField{
		Time:   f.Time,
		Lat:    make([]float64, len(js)),
		Lon:    make([]float64, len(is)),
		Values: make([]float64, len(f.Time)*len(js)*len(is)),
	}
	for jj, j := range js {
		sub.Lat[jj] = f.Lat[j]
	}
	for ii, i := range is {
		sub.Lon[ii] = f.Lon[i]
	}
	for t := range f.Time {
		for jj, j := range js {
			for ii, i := range is {
				sub.Values[(t*len(js)+jj)*len(is)+ii] = f.At(t, j, i)
			}
		}
	}
	return sub, nil
}

// timeSlice returns the half-open index range [i0, i1) of time steps falling
// inside ref. The period must be contained in the field's coverage.
func (f *GriddedField) timeSlice(ref ReferencePeriod) (int, int, error) {
	first, last := f.Time[0], f.Time[len(f.Time)-1]
	if ref.Start.Before(first) || ref.End.After(last) {
		return 0, 0, fmt.Errorf("%w: want [%s, %s], field covers [%s, %s]",
			ErrReferenceOutOfRange,
			ref.Start.Format(time.DateOnly), ref.End.Format(time.DateOnly),
			first.Format(time.DateOnly), last.Format(time.DateOnly))
	}

	i0 := len(f.Time)
	for i, t := range f.Time {
		if ref.Contains(t) {
			i0 = i
			break
		}
	}
	i1 := i0
	for i1 < len(f.Time) && ref.Contains(f.Time[i1]) {
		i1++
	}
	return i0, i1, nil
}

// ReferencePeriod is the closed date interval the EOF modes and baseline
// statistics are fitted over.
type ReferencePeriod struct {
	Start time.Time
	End   time.Time
}

// NewReferencePeriod validates that end does not precede start.
func NewReferencePeriod(start, end time.Time) (ReferencePeriod, error) {
	if end.Before(start) {
		return ReferencePeriod{}, fmt.Errorf("reference period end %s before start %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return ReferencePeriod{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the period, boundaries included.
func (p ReferencePeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// isFinite reports whether v is a usable data value (not NaN or ±Inf).
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
