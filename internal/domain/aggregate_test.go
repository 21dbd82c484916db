package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRegionKerala = "Kerala"
	testRegionGoa    = "Goa"
	testMurder       = "Murder"
	testRape         = "Rape"
	testDacoity      = "Dacoity"
)

func sampleTable() Table {
	return Table{
		Source: "test",
		Records: []Record{
			{Region: testRegionKerala, Year: 2006, Category: testMurder, TotalCount: 40},
			{Region: testRegionKerala, Year: 2005, Category: testMurder, TotalCount: 30},
			{Region: testRegionKerala, Year: 2005, Category: testRape, TotalCount: 20},
			{Region: testRegionGoa, Year: 2005, Category: testMurder, TotalCount: 5},
			{Region: testRegionKerala, Year: 2006, Category: testRape, TotalCount: 0},
			{Region: testRegionKerala, Year: 2006, Category: testDacoity, TotalCount: 10},
			{Region: testRegionKerala, Year: 2005, Category: testMurder, TotalCount: 1},
		},
	}
}

func TestAggregateByRegionYear(t *testing.T) {
	got := AggregateByRegionYear(sampleTable())

	want := []Series{
		{Region: testRegionGoa, Observations: []Observation{
			{Region: testRegionGoa, Year: 2005, TotalCount: 5},
		}},
		{Region: testRegionKerala, Observations: []Observation{
			{Region: testRegionKerala, Year: 2005, TotalCount: 51},
			{Region: testRegionKerala, Year: 2006, TotalCount: 50},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateByRegionYear_PreservesTotalsAndUniqueness(t *testing.T) {
	table := sampleTable()
	inputTotal := 0.0
	for _, r := range table.Records {
		inputTotal += r.TotalCount
	}

	outputTotal := 0.0
	seen := make(map[regionYear]bool)
	for _, s := range AggregateByRegionYear(table) {
		for i, o := range s.Observations {
			key := regionYear{o.Region, o.Year}
			assert.False(t, seen[key], "duplicate observation for %v", key)
			seen[key] = true
			outputTotal += o.TotalCount
			if i > 0 {
				assert.Greater(t, o.Year, s.Observations[i-1].Year)
			}
		}
	}
	assert.InDelta(t, inputTotal, outputTotal, 1e-9)
}

func TestAggregateByRegionYear_Empty(t *testing.T) {
	assert.Empty(t, AggregateByRegionYear(Table{}))
}

func TestAggregateByCategory(t *testing.T) {
	got := AggregateByCategory(sampleTable(), testRegionKerala, 2006)

	require.Len(t, got, 2, "zero-sum categories are dropped")
	assert.Equal(t, testMurder, got[0].Category)
	assert.InDelta(t, 40.0, got[0].TotalCount, 1e-9)
	assert.Equal(t, testDacoity, got[1].Category)
	assert.InDelta(t, 10.0, got[1].TotalCount, 1e-9)
}

func TestAggregateByCategory_TiesSortByName(t *testing.T) {
	table := Table{Records: []Record{
		{Region: testRegionGoa, Year: 2010, Category: "B", TotalCount: 7},
		{Region: testRegionGoa, Year: 2010, Category: "A", TotalCount: 7},
	}}
	got := AggregateByCategory(table, testRegionGoa, 2010)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Category)
	assert.Equal(t, "B", got[1].Category)
}

func TestAggregateByCategory_NoMatch(t *testing.T) {
	assert.Empty(t, AggregateByCategory(sampleTable(), "Punjab", 2006))
}

func TestCategorySeries(t *testing.T) {
	s := CategorySeries(sampleTable(), testRegionKerala, testMurder)

	assert.Equal(t, testRegionKerala, s.Region)
	assert.Equal(t, testMurder, s.Category)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 2005, s.Observations[0].Year)
	assert.InDelta(t, 31.0, s.Observations[0].TotalCount, 1e-9)
	assert.Equal(t, 2006, s.Observations[1].Year)
}

func TestFindSeriesAndRegions(t *testing.T) {
	series := AggregateByRegionYear(sampleTable())

	assert.Equal(t, []string{testRegionGoa, testRegionKerala}, Regions(series))

	s, ok := FindSeries(series, testRegionKerala)
	require.True(t, ok)
	assert.Equal(t, testRegionKerala, s.Region)

	_, ok = FindSeries(series, "Atlantis")
	assert.False(t, ok)
}

func TestCategoriesAndMaxYear(t *testing.T) {
	table := sampleTable()
	assert.Equal(t, []string{testDacoity, testMurder, testRape}, Categories(table))

	year, ok := MaxYear(table)
	require.True(t, ok)
	assert.Equal(t, 2006, year)

	_, ok = MaxYear(Table{})
	assert.False(t, ok)
}
