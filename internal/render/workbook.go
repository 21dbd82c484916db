package render

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
)

// Workbook sheet names.
const (
	SheetForecast     = "Forecast"
	SheetYearOverYear = "YearOverYear"
	SheetCategories   = "Categories"
	SheetSummary      = "Summary"
)

// WriteWorkbook exports res as an xlsx workbook with one sheet per view.
func WriteWorkbook(w io.Writer, res *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetSummary)
	for _, name := range []string{SheetForecast, SheetYearOverYear, SheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, SheetSummary, summaryRows(res)); err != nil {
		return err
	}
	if err := writeRows(f, SheetForecast, forecastRows(res)); err != nil {
		return err
	}
	if err := writeRows(f, SheetYearOverYear, tableRows(YearOverYearTable(res.YearOverYear))); err != nil {
		return err
	}
	if err := writeRows(f, SheetCategories, tableRows(CategoryTable(res.CategoryYear, res.CategoryShares))); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		last, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return fmt.Errorf("size %s columns: %w", sheet, err)
		}
	}
	return nil
}

func summaryRows(res *pipeline.Result) [][]any {
	rows := [][]any{
		{"Field", "Value"},
		{"Region", res.Params.Region},
		{"Horizon (years)", res.Params.HorizonYears},
		{"Status", string(res.Status)},
		{"Insight", res.Insight.Message()},
		{"Source", res.Source},
		{"Run ID", res.RunID},
		{"Generated at", res.GeneratedAt.UTC().Format(time.RFC3339)},
	}
	if res.Status == pipeline.StatusRendered && len(res.Future) > 0 {
		rows = append(rows, []any{"Projected change (%)", res.Insight.ChangePct})
	}
	if cat := res.CategoryForecast; cat != nil {
		rows = append(rows, []any{"Category forecast", fmt.Sprintf("%s (%s)", cat.Category, cat.Status)})
	}
	for _, w := range res.Warnings {
		rows = append(rows, []any{"Warning", w.Message})
	}
	return rows
}

// forecastRows holds raw numbers so spreadsheet formulas can use them.
func forecastRows(res *pipeline.Result) [][]any {
	rows := [][]any{{"Year", "Observed", "Predicted", "Lower Bound", "Upper Bound", "Trend", "Seasonal"}}
	if res.Forecast == nil {
		return rows
	}

	observed := make(map[int]float64, len(res.History))
	for _, o := range res.History {
		observed[o.Year] = o.TotalCount
	}
	for _, p := range res.Forecast.Points {
		year := p.Timestamp.Year()
		var obs any
		if v, ok := observed[year]; ok {
			obs = v
		}
		rows = append(rows, []any{year, obs, p.Predicted, p.Lower, p.Upper, p.Trend, p.Seasonal})
	}
	return rows
}

func tableRows(t Table) [][]any {
	rows := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	rows = append(rows, header)
	for _, r := range t.Rows {
		row := make([]any, len(r))
		for i, c := range r {
			row[i] = c
		}
		rows = append(rows, row)
	}
	return rows
}
