package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/render"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html.tmpl").ParseFS(templateFS, "templates/page.html.tmpl"))

// Query parameter names.
const (
	paramRegion           = "region"
	paramHorizon          = "horizon"
	paramCategory         = "category"
	paramCategoryForecast = "category_forecast"
)

// parseParams reads the dashboard controls. Missing values are left zero so the
// pipeline applies its defaults; range checks are the pipeline's job.
func parseParams(q url.Values) (pipeline.Params, error) {
	params := pipeline.Params{
		Region:   q.Get(paramRegion),
		Category: q.Get(paramCategory),
	}

	if raw := q.Get(paramHorizon); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("%w: %q is not a whole number of years", pipeline.ErrInvalidHorizon, raw)
		}
		params.HorizonYears = h
	}

	switch q.Get(paramCategoryForecast) {
	case "", "0", "false", "off":
	case "1", "true", "on":
		params.RunCategoryForecast = true
	default:
		return params, fmt.Errorf("invalid %s value %q", paramCategoryForecast, q.Get(paramCategoryForecast))
	}
	return params, nil
}

func encodeParams(p pipeline.Params) string {
	q := url.Values{}
	q.Set(paramRegion, p.Region)
	q.Set(paramHorizon, strconv.Itoa(p.HorizonYears))
	if p.Category != "" {
		q.Set(paramCategory, p.Category)
	}
	if p.RunCategoryForecast {
		q.Set(paramCategoryForecast, "1")
	}
	return q.Encode()
}

type chartView struct {
	Title string
	URL   string
}

type pageData struct {
	Status  int
	Error   string
	Result  *pipeline.Result
	Horizon []int

	Insight      string
	InsightKind  domain.InsightKind
	Charts       []chartView
	Future       *render.Table
	YearOverYear render.Table
	Categories   render.Table
	Category     *categoryView
	ExportURL    string
	Warnings     []pipeline.Warning
}

type categoryView struct {
	Name     string
	Status   pipeline.Status
	Chart    *chartView
	Future   *render.Table
	Warnings []pipeline.Warning
}

var chartTitles = map[render.ChartName]string{
	render.ChartForecast:         "Forecast",
	render.ChartComponents:       "Trend and seasonality",
	render.ChartYearOverYear:     "Year-over-year change",
	render.ChartCategories:       "Crime category distribution",
	render.ChartHistory:          "Historical trend",
	render.ChartCategoryForecast: "Category forecast",
}

func newPageData(res *pipeline.Result) pageData {
	query := encodeParams(res.Params)
	d := pageData{
		Status:       http.StatusOK,
		Result:       res,
		Horizon:      horizonOptions(),
		Insight:      res.Insight.Message(),
		InsightKind:  res.Insight.Kind,
		YearOverYear: render.YearOverYearTable(res.YearOverYear),
		Categories:   render.CategoryTable(res.CategoryYear, res.CategoryShares),
		ExportURL:    "/export.xlsx?" + query,
		Warnings:     res.Warnings,
	}

	for _, name := range render.Charts {
		if name == render.ChartCategoryForecast || !render.Available(res, name) {
			continue
		}
		d.Charts = append(d.Charts, chartView{Title: chartTitles[name], URL: chartURL(name, query)})
	}

	if len(res.Future) > 0 {
		t := render.FutureTable(res.Future)
		d.Future = &t
	}

	if cat := res.CategoryForecast; cat != nil {
		cv := &categoryView{Name: cat.Category, Status: cat.Status, Warnings: cat.Warnings}
		if render.Available(res, render.ChartCategoryForecast) {
			cv.Chart = &chartView{
				Title: fmt.Sprintf("%s: %s", chartTitles[render.ChartCategoryForecast], cat.Category),
				URL:   chartURL(render.ChartCategoryForecast, query),
			}
		}
		if len(cat.Future) > 0 {
			t := render.FutureTable(cat.Future)
			cv.Future = &t
		}
		d.Category = cv
	}
	return d
}

func errorPage(status int, err error) pageData {
	return pageData{Status: status, Error: err.Error()}
}

func chartURL(name render.ChartName, query string) string {
	return "/charts/" + url.PathEscape(string(name)) + "?" + query
}

func horizonOptions() []int {
	out := make([]int, 0, pipeline.MaxHorizon)
	for h := pipeline.MinHorizon; h <= pipeline.MaxHorizon; h++ {
		out = append(out, h)
	}
	return out
}

func (s *Server) writePage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("page rendering failed", "error", err)
		http.Error(w, "page rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}
