package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		latest     float64
		next       float64
		wantKind   InsightKind
		wantChange float64
	}{
		{"increase", 100, 107, InsightIncreasing, 7.0},
		{"decrease", 100, 90, InsightDecreasing, -10.0},
		{"stable up", 100, 104, InsightStable, 4.0},
		{"stable down", 100, 96, InsightStable, -4.0},
		{"zero latest", 0, 50, InsightStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := seriesOf("Goa", 2009, 80, 2010, tt.latest)
			future := []ForecastPoint{
				{Timestamp: YearTimestamp(2011), Predicted: tt.next},
				{Timestamp: YearTimestamp(2012), Predicted: tt.next * 3},
			}

			got := Summarize(series, future)

			assert.Equal(t, tt.wantKind, got.Kind)
			assert.InDelta(t, tt.wantChange, got.ChangePct, 1e-9)
			assert.InDelta(t, tt.latest, got.Latest, 1e-9)
			assert.InDelta(t, tt.next, got.Next, 1e-9)
		})
	}
}

func TestSummarize_NoFuture(t *testing.T) {
	got := Summarize(seriesOf("Goa", 2010, 100), nil)
	assert.Equal(t, InsightNoData, got.Kind)
	assert.Zero(t, got.ChangePct)
}

func TestInsightMessage(t *testing.T) {
	assert.Equal(t, "Projected increase of 7.0% in total violent-crime trials.",
		Insight{Kind: InsightIncreasing, ChangePct: 7}.Message())
	assert.Equal(t, "Projected decrease of 12.5%.",
		Insight{Kind: InsightDecreasing, ChangePct: -12.5}.Message())
	assert.Equal(t, "Crime trials are expected to remain relatively stable (~-1.2%).",
		Insight{Kind: InsightStable, ChangePct: -1.2}.Message())
	assert.Equal(t, "Not enough forecast data to generate insights.",
		Insight{Kind: InsightNoData}.Message())
}
