package domain

import (
	"fmt"
	"math"
	"time"
)

// Indices holds the computed E and C index series together with the
// principal components they were rotated from. All series share the input
// field's full time axis.
type Indices struct {
	Time []time.Time
	PC1  []float64
	PC2  []float64
	E    []float64
	C    []float64

	Modes *ModeSet

	ComputedAt time.Time
}

// ComputeIndices runs the full E/C recipe of Takahashi et al. (2011): fit
// two EOF modes over the reference period, project the entire series onto
// them, and rotate the normalized principal components by 45°. The result
// is deterministic for a given field and reference period.
func ComputeIndices(field *GriddedField, ref ReferencePeriod) (*Indices, error) {
	modes, err := FitModes(field, ref)
	if err != nil {
		return nil, err
	}
	pcs, err := modes.Project(field)
	if err != nil {
		return nil, err
	}

	e, c := rotate(pcs[0], pcs[1])
	return &Indices{
		Time:       append([]time.Time(nil), field.Time...),
		PC1:        pcs[0],
		PC2:        pcs[1],
		E:          e,
		C:          c,
		Modes:      modes,
		ComputedAt: clock.Now().UTC(),
	}, nil
}

// rotate applies the 45° rotation that separates the eastern and central
// Pacific regimes: E = (PC1-PC2)/√2, C = (PC1+PC2)/√2.
func rotate(pc1, pc2 []float64) (e, c []float64) {
	e = make([]float64, len(pc1))
	c = make([]float64, len(pc1))
	for i := range pc1 {
		e[i] = (pc1[i] - pc2[i]) / math.Sqrt2
		c[i] = (pc1[i] + pc2[i]) / math.Sqrt2
	}
	return e, c
}

// Validate checks the internal consistency of a result: equal series
// lengths and a strictly increasing time axis.
func (ix *Indices) Validate() error {
	n := len(ix.Time)
	if len(ix.PC1) != n || len(ix.PC2) != n || len(ix.E) != n || len(ix.C) != n {
		return fmt.Errorf("%w: index series lengths do not match the time axis", ErrInvalidField)
	}
	for i := 1; i < n; i++ {
		if !ix.Time[i].After(ix.Time[i-1]) {
			return fmt.Errorf("%w: time not strictly increasing at index %d", ErrInvalidField, i)
		}
	}
	return nil
}
