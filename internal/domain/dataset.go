package domain

import "strings"

// Dataset identifies one gridded anomaly source listed in the catalog, for
// example a single CESM2-LENS ensemble member or an ERSSTv5 subset.
type Dataset struct {
	SourceID   string
	Experiment string
	MemberID   string
	Variable   string
	Path       string
	Format     string // "netcdf" or "csv"
}

// Key returns a filesystem-safe identifier used to name output files,
// e.g. "ersstv5_observed_r1".
func (d Dataset) Key() string {
	parts := []string{d.SourceID, d.Experiment, d.MemberID}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, sanitize(p))
		}
	}
	if len(kept) == 0 {
		return "dataset"
	}
	return strings.Join(kept, "_")
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// IndexResult pairs a dataset with its computed index series and, when
// enough winter seasons exist, the nonlinearity fit.
type IndexResult struct {
	Dataset Dataset
	Indices *Indices
	Alpha   *AlphaFit // nil when the series holds too few DJF seasons
}
