package pipeline

import (
	"time"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusRendered         Status = "rendered"
	StatusInsufficientData Status = "insufficient_data"
)

// WarningKind classifies a recovered condition shown alongside the dashboard.
type WarningKind string

const (
	WarningInsufficientData  WarningKind = "insufficient_data"
	WarningEmptyFutureWindow WarningKind = "empty_future_window"
	WarningRender            WarningKind = "render_warning"
)

// Warning is a non-fatal message for the analyst.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Result holds everything the presentation layer needs for one refresh.
// Forecast, Components and Future are empty when Status is StatusInsufficientData.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	Params      Params

	// Control options.
	Regions    []string
	Categories []string

	Status Status
	Series domain.Series

	Forecast   *domain.ForecastResult
	Components []domain.ComponentPoint
	Future     []domain.ForecastPoint
	Insight    domain.Insight

	History        []domain.Observation
	YearOverYear   []domain.YoYPoint
	CategoryYear   int
	CategoryShares []domain.CategoryShare

	CategoryForecast *CategoryResult
	Warnings         []Warning
}

// CategoryResult is the optional per-category forecast. Its status never
// affects the region result.
type CategoryResult struct {
	Category string
	Status   Status
	Series   domain.Series
	Forecast *domain.ForecastResult
	Future   []domain.ForecastPoint
	Warnings []Warning
}

// HasWarning reports whether the result carries a warning of kind.
func (r *Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
