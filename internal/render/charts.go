// Package render turns pipeline results into PNG charts, display tables and
// spreadsheet exports.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
)

// ChartName identifies one dashboard chart.
type ChartName string

const (
	ChartForecast         ChartName = "forecast"
	ChartComponents       ChartName = "components"
	ChartYearOverYear     ChartName = "yoy"
	ChartCategories       ChartName = "categories"
	ChartHistory          ChartName = "history"
	ChartCategoryForecast ChartName = "category_forecast"
)

// Charts lists every chart in page order.
var Charts = []ChartName{
	ChartForecast,
	ChartComponents,
	ChartYearOverYear,
	ChartCategories,
	ChartHistory,
	ChartCategoryForecast,
}

var (
	// ErrUnknownChart reports a chart name not in Charts.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrChartUnavailable reports a chart whose data was not produced by the run.
	ErrChartUnavailable = errors.New("chart unavailable")
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch

	// Pie charts switch from wedge labels to a legend above this many categories.
	maxPieLabels = 5
)

var (
	observedColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	forecastColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bandColor     = color.RGBA{R: 31, G: 119, B: 180, A: 60}
	trendColor    = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	seasonColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	riseColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	fallColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	guideColor    = color.RGBA{R: 128, G: 128, B: 128, A: 255}

	palette = []color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255},
		color.RGBA{R: 255, G: 127, B: 14, A: 255},
		color.RGBA{R: 44, G: 160, B: 44, A: 255},
		color.RGBA{R: 214, G: 39, B: 40, A: 255},
		color.RGBA{R: 148, G: 103, B: 189, A: 255},
		color.RGBA{R: 140, G: 86, B: 75, A: 255},
		color.RGBA{R: 227, G: 119, B: 194, A: 255},
		color.RGBA{R: 127, G: 127, B: 127, A: 255},
		color.RGBA{R: 188, G: 189, B: 34, A: 255},
		color.RGBA{R: 23, G: 190, B: 207, A: 255},
	}
)

// Available reports whether res carries the data for chart name.
func Available(res *pipeline.Result, name ChartName) bool {
	switch name {
	case ChartForecast:
		return res.Forecast != nil
	case ChartComponents:
		return len(res.Components) > 0
	case ChartYearOverYear:
		return len(res.YearOverYear) > 0
	case ChartCategories:
		return len(res.CategoryShares) > 0
	case ChartHistory:
		return len(res.History) > 0
	case ChartCategoryForecast:
		return res.CategoryForecast != nil && res.CategoryForecast.Forecast != nil
	default:
		return false
	}
}

// WriteChart renders chart name for res as a PNG image.
func WriteChart(w io.Writer, res *pipeline.Result, name ChartName) error {
	if !knownChart(name) {
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if !Available(res, name) {
		return fmt.Errorf("%w: %s", ErrChartUnavailable, name)
	}

	region := res.Params.Region
	var (
		p   *plot.Plot
		err error
	)
	switch name {
	case ChartComponents:
		return writeComponents(w, res.Components)
	case ChartForecast:
		p, err = forecastPlot(fmt.Sprintf("Forecast: %s", region), res.Series, res.Forecast)
	case ChartYearOverYear:
		p, err = yearOverYearPlot(region, res.YearOverYear)
	case ChartCategories:
		p = categoryPlot(fmt.Sprintf("Crime categories: %s (%d)", region, res.CategoryYear), res.CategoryShares)
	case ChartHistory:
		p, err = historyPlot(region, res.History)
	case ChartCategoryForecast:
		cat := res.CategoryForecast
		p, err = forecastPlot(fmt.Sprintf("Forecast: %s in %s", cat.Category, region), cat.Series, cat.Forecast)
	}
	if err != nil {
		return fmt.Errorf("build %s chart: %w", name, err)
	}
	return writePNG(w, p, chartWidth, chartHeight)
}

func knownChart(name ChartName) bool {
	for _, c := range Charts {
		if c == name {
			return true
		}
	}
	return false
}

func writePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func forecastPlot(title string, series domain.Series, fc *domain.ForecastResult) (*plot.Plot, error) {
	p := newPlot(title, "Year", "Violent-crime trials")

	n := len(fc.Points)
	band := make(plotter.XYs, 0, 2*n)
	predicted := make(plotter.XYs, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pt := range fc.Points {
		x := yearX(pt.Timestamp)
		band = append(band, plotter.XY{X: x, Y: pt.Upper})
		predicted[i] = plotter.XY{X: x, Y: pt.Predicted}
		lo, hi = math.Min(lo, pt.Lower), math.Max(hi, pt.Upper)
	}
	for i := n - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: yearX(fc.Points[i].Timestamp), Y: fc.Points[i].Lower})
	}

	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return nil, err
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0

	line, err := plotter.NewLine(predicted)
	if err != nil {
		return nil, err
	}
	line.Color = forecastColor
	line.Width = vg.Points(2)

	observed := observationXYs(series.Observations)
	for _, o := range observed {
		lo, hi = math.Min(lo, o.Y), math.Max(hi, o.Y)
	}
	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = observedColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)

	cutoff, err := plotter.NewLine(plotter.XYs{
		{X: yearX(fc.LastHistorical), Y: lo},
		{X: yearX(fc.LastHistorical), Y: hi},
	})
	if err != nil {
		return nil, err
	}
	cutoff.Color = guideColor
	cutoff.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(poly, cutoff, line, scatter)
	p.Legend.Add("Observed", scatter)
	p.Legend.Add("Forecast", line)
	p.Legend.Add("Uncertainty interval", poly)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// writeComponents draws trend above seasonality % on a shared year axis.
func writeComponents(w io.Writer, points []domain.ComponentPoint) error {
	trend := make(plotter.XYs, len(points))
	seasonal := make(plotter.XYs, len(points))
	for i, pt := range points {
		x := yearX(pt.Timestamp)
		trend[i] = plotter.XY{X: x, Y: pt.Trend}
		seasonal[i] = plotter.XY{X: x, Y: pt.SeasonalPct}
	}

	top := newPlot("Trend", "", "Trials")
	trendLine, err := plotter.NewLine(trend)
	if err != nil {
		return fmt.Errorf("build trend panel: %w", err)
	}
	trendLine.Color = trendColor
	trendLine.Width = vg.Points(2)
	top.Add(trendLine)

	bottom := newPlot("Yearly seasonality", "Year", "Seasonality (%)")
	seasonLine, err := plotter.NewLine(seasonal)
	if err != nil {
		return fmt.Errorf("build seasonality panel: %w", err)
	}
	seasonLine.Color = seasonColor
	seasonLine.Width = vg.Points(2)
	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = guideColor
	zero.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	bottom.Add(zero, seasonLine)

	img := vgimg.New(chartWidth, 2*chartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
		PadY:      vg.Points(12),
	}
	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		plots[row][0].Draw(canvases[row][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func yearOverYearPlot(region string, points []domain.YoYPoint) (*plot.Plot, error) {
	p := newPlot(fmt.Sprintf("Year-over-year change: %s", region), "Year", "Change (%)")

	rises := make(plotter.Values, len(points))
	falls := make(plotter.Values, len(points))
	labels := make([]string, len(points))
	xys := make(plotter.XYs, len(points))
	texts := make([]string, len(points))
	for i, pt := range points {
		if pt.ChangePct >= 0 {
			rises[i] = pt.ChangePct
		} else {
			falls[i] = pt.ChangePct
		}
		labels[i] = fmt.Sprintf("%d", pt.Year)
		xys[i] = plotter.XY{X: float64(i), Y: pt.ChangePct}
		texts[i] = fmt.Sprintf("%.1f%%", pt.ChangePct)
	}

	up, err := plotter.NewBarChart(rises, vg.Points(20))
	if err != nil {
		return nil, err
	}
	up.Color = riseColor
	up.LineStyle.Width = 0

	down, err := plotter.NewBarChart(falls, vg.Points(20))
	if err != nil {
		return nil, err
	}
	down.Color = fallColor
	down.LineStyle.Width = 0

	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
	}

	p.Add(up, down, annotations)
	p.NominalX(labels...)
	return p, nil
}

func historyPlot(region string, history []domain.Observation) (*plot.Plot, error) {
	p := newPlot(fmt.Sprintf("Historical trend: %s", region), "Year", "Violent-crime trials")

	line, points, err := plotter.NewLinePoints(observationXYs(history))
	if err != nil {
		return nil, err
	}
	line.Color = trendColor
	line.Width = vg.Points(2)
	points.GlyphStyle.Color = trendColor
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)

	p.Add(line, points)
	return p, nil
}

func categoryPlot(title string, shares []domain.CategoryShare) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.HideAxes()

	pie := &pieChart{shares: shares, labels: len(shares) <= maxPieLabels}
	p.Add(pie)
	if !pie.labels {
		for i, s := range shares {
			p.Legend.Add(fmt.Sprintf("%s (%.1f%%)", s.Category, s.SharePct), swatch{colorAt(i)})
		}
		p.Legend.Top = true
	}
	return p
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = yearTicks{}
	p.Add(plotter.NewGrid())
	return p
}

func observationXYs(obs []domain.Observation) plotter.XYs {
	xys := make(plotter.XYs, len(obs))
	for i, o := range obs {
		xys[i] = plotter.XY{X: float64(o.Year), Y: o.TotalCount}
	}
	return xys
}

// yearX places t on a fractional-year axis.
func yearX(t time.Time) float64 {
	return float64(t.Year()) + float64(t.YearDay()-1)/365.25
}

func colorAt(i int) color.Color {
	return palette[i%len(palette)]
}

// yearTicks labels whole years, thinning labels on long ranges.
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	first, last := int(math.Ceil(lo)), int(math.Floor(hi))
	step := 1
	for (last-first)/step > 12 {
		step *= 2
	}
	var ticks []plot.Tick
	for y := first; y <= last; y++ {
		t := plot.Tick{Value: float64(y)}
		if (y-first)%step == 0 {
			t.Label = fmt.Sprintf("%d", y)
		}
		ticks = append(ticks, t)
	}
	return ticks
}
