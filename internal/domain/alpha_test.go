package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadSeries builds monthly DJF series whose seasonal means lie exactly on
// the parabola y = c0 + c1*x + c2*x².
func quadSeries(years []int, xs []float64, c0, c1, c2 float64) ([]time.Time, []float64, []float64) {
	var times []time.Time
	var pc1, pc2 []float64
	for i, year := range years {
		x := xs[i]
		y := c0 + c1*x + c2*x*x
		times, pc1, pc2 = djfSeries(times, pc1, pc2, year, x, y)
	}
	return times, pc1, pc2
}

func TestFitAlpha_RecoversQuadratic(t *testing.T) {
	const c0, c1, c2 = 0.5, -0.3, 0.2
	years := []int{1990, 1992, 1994, 1996, 1998, 2000, 2002}
	xs := []float64{-2.1, -1.3, -0.4, 0.2, 0.9, 1.6, 2.4}
	times, pc1, pc2 := quadSeries(years, xs, c0, c1, c2)

	fit, err := FitAlpha(times, pc1, pc2)
	require.NoError(t, err)

	assert.InDelta(t, c2, fit.Alpha, 1e-9)
	assert.InDelta(t, c0, fit.Coeffs[0], 1e-9)
	assert.InDelta(t, c1, fit.Coeffs[1], 1e-9)
	assert.Len(t, fit.Seasons, len(years))

	t.Run("curve samples the observed range at 0.1", func(t *testing.T) {
		require.NotEmpty(t, fit.CurveX)
		assert.InDelta(t, -2.1, fit.CurveX[0], 1e-12)
		assert.LessOrEqual(t, fit.CurveX[len(fit.CurveX)-1], 2.4+1e-9)
		for i := 1; i < len(fit.CurveX); i++ {
			assert.InDelta(t, 0.1, fit.CurveX[i]-fit.CurveX[i-1], 1e-9)
		}
		for i, x := range fit.CurveX {
			assert.InDelta(t, c0+c1*x+c2*x*x, fit.CurveY[i], 1e-9)
		}
	})
}

func TestFitAlpha_Underdetermined(t *testing.T) {
	t.Run("two seasons", func(t *testing.T) {
		times, pc1, pc2 := quadSeries([]int{1995, 1996}, []float64{-1, 1}, 0, 0, 0.5)
		_, err := FitAlpha(times, pc1, pc2)
		require.ErrorIs(t, err, ErrUnderdeterminedFit)
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := FitAlpha(nil, nil, nil)
		require.ErrorIs(t, err, ErrUnderdeterminedFit)
	})

	t.Run("dropped season pushes below three", func(t *testing.T) {
		times, pc1, pc2 := quadSeries([]int{1995, 1997, 1999}, []float64{-1, 0, 1}, 0, 0, 0.5)
		pc2[4] = math.NaN() // kills the 1997 season
		_, err := FitAlpha(times, pc1, pc2)
		require.ErrorIs(t, err, ErrUnderdeterminedFit)
	})
}

func TestFitAlpha_Pre1980Excluded(t *testing.T) {
	t.Run("early seasons filtered out of the fit", func(t *testing.T) {
		years := []int{1975, 1977, 1990, 1992, 1994, 1996}
		xs := []float64{9.0, -9.0, -1.0, 0.0, 1.0, 2.0}
		times, pc1, pc2 := quadSeries(years, xs, 0, 0, 0.3)
		// Give the pre-1980 seasons values off the parabola; they must not
		// disturb the fit.
		pc2[0], pc2[1], pc2[2] = 100, 100, 100
		pc2[3], pc2[4], pc2[5] = -100, -100, -100

		fit, err := FitAlpha(times, pc1, pc2)
		require.NoError(t, err)
		require.Len(t, fit.Seasons, 4)
		assert.Equal(t, 1990, fit.Seasons[0].Year)
		assert.InDelta(t, 0.3, fit.Alpha, 1e-9)
	})

	t.Run("only pre-1980 seasons is underdetermined", func(t *testing.T) {
		times, pc1, pc2 := quadSeries([]int{1974, 1976, 1978}, []float64{-1, 0, 1}, 0, 0, 0.5)
		_, err := FitAlpha(times, pc1, pc2)
		require.ErrorIs(t, err, ErrUnderdeterminedFit)
	})
}

func TestFitAlpha_LengthMismatch(t *testing.T) {
	times, pc1, pc2 := quadSeries([]int{1995}, []float64{1}, 0, 0, 0)
	_, err := FitAlpha(times, pc1, pc2[:len(pc2)-1])
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnderdeterminedFit)
}

func TestFitAlpha_ComputedAt(t *testing.T) {
	frozen := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	times, pc1, pc2 := quadSeries(
		[]int{1990, 1992, 1994, 1996}, []float64{-1, 0, 1, 2}, 0.1, 0.2, 0.3)
	fit, err := FitAlpha(times, pc1, pc2)
	require.NoError(t, err)
	assert.Equal(t, frozen, fit.ComputedAt)
}
