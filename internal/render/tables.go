package render

import (
	"fmt"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// YearOverYearTable lists each year's count and its change from the previous year.
func YearOverYearTable(points []domain.YoYPoint) Table {
	t := Table{
		Title:   "Year-over-year change",
		Headers: []string{"Year", "Total Crimes", "YoY Change (%)"},
	}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("%.0f", p.Count),
			fmt.Sprintf("%.1f%%", p.ChangePct),
		})
	}
	return t
}

// CategoryTable lists category counts with their share of the total.
func CategoryTable(year int, shares []domain.CategoryShare) Table {
	t := Table{
		Title:   fmt.Sprintf("Crime categories in %d", year),
		Headers: []string{"Crime Category", "Total Crimes", "Share (%)"},
	}
	for _, s := range shares {
		t.Rows = append(t.Rows, []string{
			s.Category,
			fmt.Sprintf("%.0f", s.Count),
			fmt.Sprintf("%.1f%%", s.SharePct),
		})
	}
	return t
}

// FutureTable lists predicted values and interval bounds for each future year.
func FutureTable(points []domain.ForecastPoint) Table {
	t := Table{
		Title:   "Forecast",
		Headers: []string{"Year", "Predicted", "Lower Bound", "Upper Bound"},
	}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", p.Timestamp.Year()),
			fmt.Sprintf("%.0f", p.Predicted),
			fmt.Sprintf("%.0f", p.Lower),
			fmt.Sprintf("%.0f", p.Upper),
		})
	}
	return t
}
