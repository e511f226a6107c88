package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Series is an index time series read back from an exported CSV.
type Series struct {
	Time []time.Time
	PC1  []float64
	PC2  []float64
	E    []float64
	C    []float64
}

// ReadSeries parses a CSV previously produced by Writer.
func ReadSeries(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if len(records[0]) != len(seriesHeader) {
		return nil, fmt.Errorf("read %s: expected %d columns, got %d", path, len(seriesHeader), len(records[0]))
	}
	for i, name := range seriesHeader {
		if records[0][i] != name {
			return nil, fmt.Errorf("read %s: column %d is %q, want %q", path, i, records[0][i], name)
		}
	}

	s := &Series{}
	for n, rec := range records[1:] {
		t, err := time.Parse(time.DateOnly, rec[0])
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, n+1, err)
		}
		vals := make([]float64, 4)
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("read %s row %d: %w", path, n+1, err)
			}
			vals[i] = v
		}
		s.Time = append(s.Time, t)
		s.PC1 = append(s.PC1, vals[0])
		s.PC2 = append(s.PC2, vals[1])
		s.E = append(s.E, vals[2])
		s.C = append(s.C, vals[3])
	}
	return s, nil
}

// ReadAlpha parses an alpha JSON document previously produced by Writer.
func ReadAlpha(path string) (*AlphaDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc AlphaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}
