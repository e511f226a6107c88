// Package gridcsv loads gridded anomaly fields from long-format CSV files:
// one row per (time, lat, lon) cell. The format exists for fixtures and
// tests; real datasets come through the netcdf adapter.
package gridcsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/oceanobs/ecindex/internal/domain"
)

// header is the required first line: dates are YYYY-MM-DD, values are
// decimal or the literal NaN for missing cells. Cells absent from the file
// are missing too.
var header = [4]string{"time", "lat", "lon", "value"}

// Loader reads long-format grid CSVs. It implements pipeline.FieldLoader.
type Loader struct{}

type cell struct {
	t        time.Time
	lat, lon float64
	v        float64
}

// Load parses the file at path into a GriddedField. The grid axes are the
// sorted distinct coordinates present in the file.
func (Loader) Load(_ context.Context, path string) (*domain.GriddedField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read grid csv header: %w", err)
	}
	if len(first) != len(header) || first[0] != header[0] || first[1] != header[1] ||
		first[2] != header[2] || first[3] != header[3] {
		return nil, fmt.Errorf("grid csv %s: header must be time,lat,lon,value", path)
	}

	var cells []cell
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("grid csv %s line %d: %w", path, line, err)
		}
		c, err := parseCell(row)
		if err != nil {
			return nil, fmt.Errorf("grid csv %s line %d: %w", path, line, err)
		}
		cells = append(cells, c)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("grid csv %s: no data rows", path)
	}

	return assemble(cells)
}

func parseCell(row []string) (cell, error) {
	if len(row) != 4 {
		return cell{}, fmt.Errorf("want 4 fields, have %d", len(row))
	}
	t, err := time.Parse(time.DateOnly, row[0])
	if err != nil {
		return cell{}, fmt.Errorf("bad time %q", row[0])
	}
	lat, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return cell{}, fmt.Errorf("bad lat %q", row[1])
	}
	lon, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return cell{}, fmt.Errorf("bad lon %q", row[2])
	}
	v, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return cell{}, fmt.Errorf("bad value %q", row[3])
	}
	return cell{t: t, lat: lat, lon: lon, v: v}, nil
}

// assemble builds the dense field from sparse cells, leaving NaN where the
// file has no row for a grid point.
func assemble(cells []cell) (*domain.GriddedField, error) {
	timeSet := make(map[int64]time.Time)
	latSet := make(map[float64]bool)
	lonSet := make(map[float64]bool)
	for _, c := range cells {
		timeSet[c.t.Unix()] = c.t
		latSet[c.lat] = true
		lonSet[c.lon] = true
	}

	times := make([]time.Time, 0, len(timeSet))
	for _, t := range timeSet {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	lat := sortedKeys(latSet)
	lon := sortedKeys(lonSet)

	timeIdx := make(map[int64]int, len(times))
	for i, t := range times {
		timeIdx[t.Unix()] = i
	}
	latIdx := indexOf(lat)
	lonIdx := indexOf(lon)

	values := make([]float64, len(times)*len(lat)*len(lon))
	for i := range values {
		values[i] = math.NaN()
	}
	for _, c := range cells {
		ti := timeIdx[c.t.Unix()]
		j := latIdx[c.lat]
		i := lonIdx[c.lon]
		values[(ti*len(lat)+j)*len(lon)+i] = c.v
	}

	return domain.NewGriddedField(times, lat, lon, values)
}

func sortedKeys(set map[float64]bool) []float64 {
	out := make([]float64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}

func indexOf(sorted []float64) map[float64]int {
	idx := make(map[float64]int, len(sorted))
	for i, v := range sorted {
		idx[v] = i
	}
	return idx
}
