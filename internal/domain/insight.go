package domain

import (
	"fmt"
	"math"
)

// InsightKind is the qualitative band a projected change falls into.
type InsightKind string

const (
	InsightNoData     InsightKind = "no_data"
	InsightIncreasing InsightKind = "increasing"
	InsightDecreasing InsightKind = "decreasing"
	InsightStable     InsightKind = "stable"
)

// changeThreshold is the absolute percentage change separating stable from trending.
const changeThreshold = 5.0

// Insight compares the latest observation with the first future prediction.
type Insight struct {
	Kind      InsightKind
	ChangePct float64
	Latest    float64
	Next      float64
}

// Summarize classifies the change from the last observation of series to the first
// point of future: above +5% is increasing, below -5% decreasing, otherwise stable.
// The change is 0 when the latest count is not positive.
func Summarize(series Series, future []ForecastPoint) Insight {
	last, ok := series.Last()
	if len(future) == 0 || !ok {
		return Insight{Kind: InsightNoData}
	}

	latest := last.TotalCount
	next := future[0].Predicted
	change := 0.0
	if latest > 0 {
		change = (next - latest) / latest * 100
	}

	kind := InsightStable
	switch {
	case change > changeThreshold:
		kind = InsightIncreasing
	case change < -changeThreshold:
		kind = InsightDecreasing
	}
	return Insight{Kind: kind, ChangePct: change, Latest: latest, Next: next}
}

// Message renders the insight as a single line for display.
func (i Insight) Message() string {
	switch i.Kind {
	case InsightIncreasing:
		return fmt.Sprintf("Projected increase of %.1f%% in total violent-crime trials.", i.ChangePct)
	case InsightDecreasing:
		return fmt.Sprintf("Projected decrease of %.1f%%.", math.Abs(i.ChangePct))
	case InsightStable:
		return fmt.Sprintf("Crime trials are expected to remain relatively stable (~%.1f%%).", i.ChangePct)
	default:
		return "Not enough forecast data to generate insights."
	}
}
