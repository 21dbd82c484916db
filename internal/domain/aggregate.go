package domain

import (
	"sort"
)

type regionYear struct {
	region string
	year   int
}

// AggregateByRegionYear sums counts per (region, year) and returns one Series per
// region, sorted by region name, each with observations sorted by year.
func AggregateByRegionYear(table Table) []Series {
	totals := make(map[regionYear]float64)
	for _, r := range table.Records {
		totals[regionYear{r.Region, r.Year}] += r.TotalCount
	}

	byRegion := make(map[string][]Observation)
	for k, total := range totals {
		byRegion[k.region] = append(byRegion[k.region], Observation{
			Region:     k.region,
			Year:       k.year,
			TotalCount: total,
		})
	}

	out := make([]Series, 0, len(byRegion))
	for region, obs := range byRegion {
		sortByYear(obs)
		out = append(out, Series{Region: region, Observations: obs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// AggregateByCategory sums counts per category for one region and year. Categories
// summing to zero are dropped; the rest are sorted by count descending, then by name.
func AggregateByCategory(table Table, region string, year int) []CategoryObservation {
	totals := make(map[string]float64)
	for _, r := range table.Records {
		if r.Region != region || r.Year != year {
			continue
		}
		totals[r.Category] += r.TotalCount
	}

	out := make([]CategoryObservation, 0, len(totals))
	for category, total := range totals {
		if total <= 0 {
			continue
		}
		out = append(out, CategoryObservation{
			Region:     region,
			Year:       year,
			Category:   category,
			TotalCount: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCount != out[j].TotalCount {
			return out[i].TotalCount > out[j].TotalCount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategorySeries returns the yearly series of one category within one region.
func CategorySeries(table Table, region, category string) Series {
	totals := make(map[int]float64)
	for _, r := range table.Records {
		if r.Region == region && r.Category == category {
			totals[r.Year] += r.TotalCount
		}
	}

	obs := make([]Observation, 0, len(totals))
	for year, total := range totals {
		obs = append(obs, Observation{Region: region, Year: year, TotalCount: total})
	}
	sortByYear(obs)
	return Series{Region: region, Category: category, Observations: obs}
}

// FindSeries returns the series for region.
func FindSeries(series []Series, region string) (Series, bool) {
	i := sort.Search(len(series), func(i int) bool { return series[i].Region >= region })
	if i < len(series) && series[i].Region == region {
		return series[i], true
	}
	return Series{}, false
}

// Regions lists the region of every series, in series order.
func Regions(series []Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Region
	}
	return out
}

// Categories lists the distinct categories in the table, sorted.
func Categories(table Table) []string {
	seen := make(map[string]struct{})
	for _, r := range table.Records {
		seen[r.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MaxYear returns the latest year present anywhere in the table.
func MaxYear(table Table) (int, bool) {
	if len(table.Records) == 0 {
		return 0, false
	}
	maxYear := table.Records[0].Year
	for _, r := range table.Records[1:] {
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	return maxYear, true
}

func sortByYear(obs []Observation) {
	sort.Slice(obs, func(i, j int) bool { return obs[i].Year < obs[j].Year })
}
