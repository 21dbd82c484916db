package domain

import (
	"fmt"
	"math"
	"time"
)

// ComponentPoint exposes the fitted trend and yearly seasonal values at one timestamp.
// SeasonalPct is the seasonal value as a percentage deviation from its own mean.
type ComponentPoint struct {
	Timestamp   time.Time
	Trend       float64
	Seasonal    float64
	SeasonalPct float64
}

// YoYPoint is the change between an observation and its predecessor, in percent.
type YoYPoint struct {
	Year      int
	Count     float64
	ChangePct float64
}

// CategoryShare is one category's count and its percentage of the region-year total.
type CategoryShare struct {
	Category string
	Count    float64
	SharePct float64
}

// Components splits a forecast into trend and seasonality. The seasonal percentage is
// (s - mean) / |mean| * 100, or the raw seasonal value when the mean is zero.
// It fails with ErrMissingComponents when any component is not a finite number.
func Components(result ForecastResult) ([]ComponentPoint, error) {
	if len(result.Points) == 0 {
		return nil, fmt.Errorf("%w: forecast is empty", ErrMissingComponents)
	}

	sum := 0.0
	for _, p := range result.Points {
		if !finite(p.Trend) || !finite(p.Seasonal) {
			return nil, fmt.Errorf("%w: non-finite value at %s", ErrMissingComponents, p.Timestamp.Format(time.DateOnly))
		}
		sum += p.Seasonal
	}
	mean := sum / float64(len(result.Points))

	out := make([]ComponentPoint, len(result.Points))
	for i, p := range result.Points {
		pct := p.Seasonal
		if mean != 0 {
			pct = (p.Seasonal - mean) / math.Abs(mean) * 100
		}
		out[i] = ComponentPoint{
			Timestamp:   p.Timestamp,
			Trend:       p.Trend,
			Seasonal:    p.Seasonal,
			SeasonalPct: pct,
		}
	}
	return out, nil
}

// YearOverYear computes the percentage change between consecutive observations of
// the raw series. The first observation and any observation whose predecessor is
// zero have no defined change and are omitted.
func YearOverYear(series Series) []YoYPoint {
	if series.Len() < 2 {
		return nil
	}
	out := make([]YoYPoint, 0, series.Len()-1)
	for i := 1; i < series.Len(); i++ {
		prev := series.Observations[i-1].TotalCount
		cur := series.Observations[i]
		if prev == 0 {
			continue
		}
		out = append(out, YoYPoint{
			Year:      cur.Year,
			Count:     cur.TotalCount,
			ChangePct: (cur.TotalCount - prev) / prev * 100,
		})
	}
	return out
}

// CategoryShares attaches percentage shares to an aggregated category distribution,
// keeping the input order.
func CategoryShares(obs []CategoryObservation) []CategoryShare {
	total := 0.0
	for _, o := range obs {
		total += o.TotalCount
	}
	out := make([]CategoryShare, len(obs))
	for i, o := range obs {
		share := 0.0
		if total > 0 {
			share = o.TotalCount / total * 100
		}
		out[i] = CategoryShare{Category: o.Category, Count: o.TotalCount, SharePct: share}
	}
	return out
}

// FutureWindow returns the forecast points strictly after the last observation of series.
func FutureWindow(result ForecastResult, series Series) []ForecastPoint {
	last, ok := series.Last()
	if !ok {
		return nil
	}
	cutoff := YearTimestamp(last.Year)

	var out []ForecastPoint
	for _, p := range result.Points {
		if p.Timestamp.After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
