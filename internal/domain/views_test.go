package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(region string, pairs ...float64) Series {
	s := Series{Region: region}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Observations = append(s.Observations, Observation{
			Region:     region,
			Year:       int(pairs[i]),
			TotalCount: pairs[i+1],
		})
	}
	return s
}

func TestYearOverYear(t *testing.T) {
	got := YearOverYear(seriesOf("Goa", 2005, 100, 2006, 150, 2007, 90))

	require.Len(t, got, 2)
	assert.Equal(t, 2006, got[0].Year)
	assert.InDelta(t, 50.0, got[0].ChangePct, 1e-9)
	assert.Equal(t, 2007, got[1].Year)
	assert.InDelta(t, -40.0, got[1].ChangePct, 1e-9)
}

func TestYearOverYear_ZeroPredecessorOmitted(t *testing.T) {
	got := YearOverYear(seriesOf("Goa", 2005, 0, 2006, 10, 2007, 20))

	require.Len(t, got, 1)
	assert.Equal(t, 2007, got[0].Year)
	assert.InDelta(t, 100.0, got[0].ChangePct, 1e-9)
}

func TestYearOverYear_ShortSeries(t *testing.T) {
	assert.Empty(t, YearOverYear(seriesOf("Goa", 2005, 100)))
	assert.Empty(t, YearOverYear(Series{}))
}

func TestCategoryShares(t *testing.T) {
	got := CategoryShares([]CategoryObservation{
		{Category: "A", TotalCount: 50},
		{Category: "B", TotalCount: 30},
		{Category: "C", TotalCount: 20},
	})

	require.Len(t, got, 3)
	want := []float64{50, 30, 20}
	total := 0.0
	for i, share := range got {
		assert.InDelta(t, want[i], share.SharePct, 1e-9)
		total += share.SharePct
	}
	assert.Equal(t, []string{"A", "B", "C"}, []string{got[0].Category, got[1].Category, got[2].Category})
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestCategoryShares_Empty(t *testing.T) {
	assert.Empty(t, CategoryShares(nil))
}

func forecastOf(years []int, seasonal []float64) ForecastResult {
	res := ForecastResult{Region: "Goa"}
	for i, y := range years {
		res.Points = append(res.Points, ForecastPoint{
			Timestamp: YearTimestamp(y),
			Predicted: float64(100 + i),
			Lower:     float64(90 + i),
			Upper:     float64(110 + i),
			Trend:     float64(100 + i),
			Seasonal:  seasonal[i],
		})
	}
	return res
}

func TestComponents_PercentOfMean(t *testing.T) {
	got, err := Components(forecastOf([]int{2005, 2006, 2007}, []float64{1, 2, 3}))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.InDelta(t, -50.0, got[0].SeasonalPct, 1e-9)
	assert.InDelta(t, 0.0, got[1].SeasonalPct, 1e-9)
	assert.InDelta(t, 50.0, got[2].SeasonalPct, 1e-9)
	assert.InDelta(t, 101.0, got[1].Trend, 1e-9)
}

func TestComponents_NegativeMeanUsesAbsolute(t *testing.T) {
	got, err := Components(forecastOf([]int{2005, 2006}, []float64{-1, -3}))
	require.NoError(t, err)

	assert.InDelta(t, 50.0, got[0].SeasonalPct, 1e-9)
	assert.InDelta(t, -50.0, got[1].SeasonalPct, 1e-9)
}

func TestComponents_ZeroMeanFallsBackToRaw(t *testing.T) {
	got, err := Components(forecastOf([]int{2005, 2006}, []float64{-2, 2}))
	require.NoError(t, err)

	assert.InDelta(t, -2.0, got[0].SeasonalPct, 1e-9)
	assert.InDelta(t, 2.0, got[1].SeasonalPct, 1e-9)
}

func TestComponents_MissingValues(t *testing.T) {
	_, err := Components(forecastOf([]int{2005, 2006}, []float64{1, math.NaN()}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingComponents))

	_, err = Components(ForecastResult{})
	assert.ErrorIs(t, err, ErrMissingComponents)
}

func TestFutureWindow(t *testing.T) {
	series := seriesOf("Goa", 2005, 100, 2006, 110, 2007, 120)
	result := forecastOf([]int{2005, 2006, 2007, 2008, 2009}, []float64{0, 0, 0, 0, 0})

	got := FutureWindow(result, series)

	require.Len(t, got, 2)
	assert.Equal(t, YearTimestamp(2008), got[0].Timestamp)
	assert.Equal(t, YearTimestamp(2009), got[1].Timestamp)
}

func TestFutureWindow_NoFuturePoints(t *testing.T) {
	series := seriesOf("Goa", 2005, 100, 2006, 110)
	result := forecastOf([]int{2005, 2006}, []float64{0, 0})

	assert.Empty(t, FutureWindow(result, series))
	assert.Empty(t, FutureWindow(result, Series{}))
}
