package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecord(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawRecord
		wantOK     bool
		wantYear   int
		wantCount  float64
		wantZeroed bool
	}{
		{"plain values", RawRecord{"Kerala", "2005", "Murder", "120"}, true, 2005, 120, false},
		{"float year", RawRecord{"Kerala", "2005.0", "Murder", "12.5"}, true, 2005, 12.5, false},
		{"padded cells", RawRecord{"  Goa ", " 2010 ", " Rape ", " 7 "}, true, 2010, 7, false},
		{"empty count", RawRecord{"Goa", "2010", "Rape", ""}, true, 2010, 0, false},
		{"NA count", RawRecord{"Goa", "2010", "Rape", "NA"}, true, 2010, 0, true},
		{"text count", RawRecord{"Goa", "2010", "Rape", "twelve"}, true, 2010, 0, true},
		{"negative count", RawRecord{"Goa", "2010", "Rape", "-4"}, true, 2010, 0, false},
		{"NaN count", RawRecord{"Goa", "2010", "Rape", "NaN"}, true, 2010, 0, true},
		{"fractional year", RawRecord{"Goa", "2010.5", "Rape", "1"}, false, 0, 0, false},
		{"missing year", RawRecord{"Goa", "", "Rape", "1"}, false, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, zeroed, ok := NormalizeRecord(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantYear, rec.Year)
			assert.InDelta(t, tt.wantCount, rec.TotalCount, 1e-9)
			assert.Equal(t, tt.wantZeroed, zeroed)
			assert.GreaterOrEqual(t, rec.TotalCount, 0.0)
		})
	}
}

func TestNormalizeRecord_TrimsNames(t *testing.T) {
	rec, _, ok := NormalizeRecord(RawRecord{" Andhra Pradesh ", "2001", " Murder  ", "3"})
	require.True(t, ok)
	assert.Equal(t, "Andhra Pradesh", rec.Region)
	assert.Equal(t, "Murder", rec.Category)
}

func TestSeriesAccessors(t *testing.T) {
	s := Series{Region: "Goa", Observations: []Observation{
		{Region: "Goa", Year: 2005, TotalCount: 10},
		{Region: "Goa", Year: 2007, TotalCount: 12},
	}}

	assert.Equal(t, 2, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 2007, last.Year)
	assert.Equal(t, []float64{10, 12}, s.Values())
	assert.Equal(t, []time.Time{
		time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2007, time.January, 1, 0, 0, 0, 0, time.UTC),
	}, s.Timestamps())

	_, ok = Series{}.Last()
	assert.False(t, ok)
}
