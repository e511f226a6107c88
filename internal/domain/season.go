package domain

import (
	"sort"
	"time"
)

// SeasonMean is the December-January-February mean of both principal
// components for one winter season. Year follows the climate convention of
// labeling a DJF season by its January/February year: the season spanning
// Dec 1999 through Feb 2000 has Year 2000.
type SeasonMean struct {
	Year int
	PC1  float64
	PC2  float64
}

// djfMeans groups two monthly series into December-anchored seasonal means.
// Seasons missing any of their three months, or containing a non-finite
// monthly value, are dropped. Results are sorted by year.
func djfMeans(times []time.Time, pc1, pc2 []float64) []SeasonMean {
	type acc struct {
		s1, s2 float64
		months map[time.Month]bool
		finite bool
	}
	byYear := make(map[int]*acc)

	for i, t := range times {
		month := t.Month()
		if month != time.December && month != time.January && month != time.February {
			continue
		}
		year := t.Year()
		if month == time.December {
			year++
		}
		a := byYear[year]
		if a == nil {
			a = &acc{months: make(map[time.Month]bool), finite: true}
			byYear[year] = a
		}
		if a.months[month] {
			// Duplicate month within a season; keep the first.
			continue
		}
		a.months[month] = true
		if !isFinite(pc1[i]) || !isFinite(pc2[i]) {
			a.finite = false
			continue
		}
		a.s1 += pc1[i]
		a.s2 += pc2[i]
	}

	var seasons []SeasonMean
	for year, a := range byYear {
		if len(a.months) != 3 || !a.finite {
			continue
		}
		seasons = append(seasons, SeasonMean{Year: year, PC1: a.s1 / 3, PC2: a.s2 / 3})
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].Year < seasons[j].Year })
	return seasons
}
