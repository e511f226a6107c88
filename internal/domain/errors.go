package domain

import "errors"

// Sentinel errors surfaced by the index calculator. Callers should match
// with errors.Is; all of them indicate unrecoverable input problems, not
// transient conditions.
var (
	// ErrInvalidField marks a gridded field that violates the axis
	// invariants (ascending latitude, 0-360 longitude, strictly
	// increasing time) or has a mismatched value count.
	ErrInvalidField = errors.New("invalid gridded field")

	// ErrReferenceOutOfRange marks a reference period that is not fully
	// inside the field's time coverage.
	ErrReferenceOutOfRange = errors.New("reference period outside field time coverage")

	// ErrDegenerateVariance marks an EOF mode with zero variance over the
	// reference period. Principal components are normalized by the inverse
	// square root of the mode variance, so a zero-variance mode cannot be
	// scaled.
	ErrDegenerateVariance = errors.New("degenerate mode variance")

	// ErrUnderdeterminedFit marks a quadratic fit attempted with fewer
	// than three seasonal points.
	ErrUnderdeterminedFit = errors.New("underdetermined quadratic fit")
)
