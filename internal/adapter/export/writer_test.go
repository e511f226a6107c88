package export

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanobs/ecindex/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResult() domain.IndexResult {
	times := []time.Time{
		time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	return domain.IndexResult{
		Dataset: domain.Dataset{
			SourceID:   "ERSSTv5",
			Experiment: "historical",
			Variable:   "sst",
		},
		Indices: &domain.Indices{
			Time: times,
			PC1:  []float64{1.25, -0.5, math.NaN()},
			PC2:  []float64{0.75, 0.25, math.NaN()},
			E:    []float64{0.35355339059327373, -0.5303300858899106, math.NaN()},
			C:    []float64{1.4142135623730951, -0.1767766952966369, math.NaN()},
		},
	}
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	res := testResult()
	require.NoError(t, w.Write(context.Background(), res))

	s, err := ReadSeries(filepath.Join(dir, "ERSSTv5_historical_sst_ec.csv"))
	require.NoError(t, err)

	require.Len(t, s.Time, 3)
	assert.Equal(t, res.Indices.Time, s.Time)
	for i := range res.Indices.PC1 {
		if math.IsNaN(res.Indices.PC1[i]) {
			assert.True(t, math.IsNaN(s.PC1[i]), "row %d", i)
			assert.True(t, math.IsNaN(s.E[i]), "row %d", i)
			continue
		}
		assert.Equal(t, res.Indices.PC1[i], s.PC1[i], "row %d", i)
		assert.Equal(t, res.Indices.PC2[i], s.PC2[i], "row %d", i)
		assert.Equal(t, res.Indices.E[i], s.E[i], "row %d", i)
		assert.Equal(t, res.Indices.C[i], s.C[i], "row %d", i)
	}
}

func TestWriterAlpha(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	res := testResult()
	res.Alpha = &domain.AlphaFit{
		Alpha:  0.2,
		Coeffs: [3]float64{0.1, -0.3, 0.2},
		Seasons: []domain.SeasonMean{
			{Year: 1998, PC1: 1.0, PC2: 0.4},
			{Year: 1999, PC1: -1.0, PC2: 0.6},
			{Year: 2000, PC1: 0.0, PC2: 0.1},
		},
		CurveX:     []float64{-1.0, -0.9, -0.8},
		CurveY:     []float64{0.6, 0.532, 0.468},
		ComputedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, w.Write(context.Background(), res))

	doc, err := ReadAlpha(filepath.Join(dir, "ERSSTv5_historical_sst_alpha.json"))
	require.NoError(t, err)
	assert.Equal(t, 0.2, doc.Alpha)
	assert.Equal(t, []float64{0.1, -0.3, 0.2}, doc.Coefficients)
	assert.Equal(t, 3, doc.Seasons)
	assert.Equal(t, res.Alpha.CurveX, doc.CurveX)
	assert.Equal(t, res.Alpha.ComputedAt, doc.ComputedAt)
}

func TestWriterNoAlpha(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, discardLogger())

	require.NoError(t, w.Write(context.Background(), testResult()))

	_, err := os.Stat(filepath.Join(dir, "ERSSTv5_historical_sst_alpha.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriterRejectsInvalidIndices(t *testing.T) {
	w := NewWriter(t.TempDir(), discardLogger())

	res := testResult()
	res.Indices.PC2 = res.Indices.PC2[:2]
	assert.Error(t, w.Write(context.Background(), res))
}

func TestReadSeriesErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSeries(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("wrong header", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("time,a,b,c,d\n"), 0o644))
		_, err := ReadSeries(path)
		assert.Error(t, err)
	})

	t.Run("bad value", func(t *testing.T) {
		path := filepath.Join(dir, "badval.csv")
		data := "time,pc1,pc2,e_index,c_index\n2000-01-15,x,0,0,0\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		_, err := ReadSeries(path)
		assert.Error(t, err)
	})
}
