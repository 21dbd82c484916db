package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// RawRecord is one row of the source table before any type coercion.
type RawRecord struct {
	Region   string `db:"region"`
	Year     string `db:"year"`
	Category string `db:"category"`
	Count    string `db:"total_count"`
}

// Record is a normalized row with canonical column types.
type Record struct {
	Region     string
	Year       int
	Category   string
	TotalCount float64
}

// Table is the normalized dataset together with a description of where it came from.
type Table struct {
	Source  string
	Records []Record
}

// Observation is the summed crime count for one region in one year.
type Observation struct {
	Region     string  `json:"region"`
	Year       int     `json:"year"`
	TotalCount float64 `json:"total_count"`
}

// CategoryObservation is the summed crime count for one category in one region-year.
type CategoryObservation struct {
	Region     string  `json:"region"`
	Year       int     `json:"year"`
	Category   string  `json:"category"`
	TotalCount float64 `json:"total_count"`
}

// Series is the year-ordered observation sequence of one region, or of one
// region and category when Category is set. Years strictly increase; gaps are allowed.
type Series struct {
	Region       string
	Category     string
	Observations []Observation
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Observations)
}

// Last returns the most recent observation.
func (s Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Timestamps places every observation on the time axis.
func (s Series) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Observations))
	for i, o := range s.Observations {
		ts[i] = YearTimestamp(o.Year)
	}
	return ts
}

// Values returns the observation counts in year order.
func (s Series) Values() []float64 {
	vs := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vs[i] = o.TotalCount
	}
	return vs
}

// ForecastPoint is one fitted or predicted value with its interval and components.
type ForecastPoint struct {
	Timestamp time.Time `json:"ds"`
	Predicted float64   `json:"yhat"`
	Lower     float64   `json:"yhat_lower"`
	Upper     float64   `json:"yhat_upper"`
	Trend     float64   `json:"trend"`
	Seasonal  float64   `json:"yearly"`
}

// ForecastResult covers every historical timestamp of a series plus Horizon future
// yearly timestamps, in strictly ascending order.
type ForecastResult struct {
	Region         string
	Category       string
	Horizon        int
	LastHistorical time.Time
	Points         []ForecastPoint
}

// YearTimestamp returns January 1 of year in UTC.
func YearTimestamp(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// NormalizeRecord coerces a raw row into a Record. Region and category are trimmed,
// the count falls back to 0 when it does not parse, and zeroed reports that fallback
// for a non-empty cell. ok is false when the year cannot be parsed.
func NormalizeRecord(raw RawRecord) (rec Record, zeroed, ok bool) {
	year, ok := parseYear(raw.Year)
	if !ok {
		return Record{}, false, false
	}

	count, parsed := parseCount(raw.Count)
	return Record{
		Region:     strings.TrimSpace(raw.Region),
		Year:       year,
		Category:   strings.TrimSpace(raw.Category),
		TotalCount: count,
	}, !parsed && strings.TrimSpace(raw.Count) != "", true
}

// parseYear accepts integer years and floats with no fractional part ("2005.0").
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// parseCount parses a crime count, returning 0 and false for anything non-numeric.
// Negative and non-finite values are also reported as 0.
func parseCount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}
