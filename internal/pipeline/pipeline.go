// Package pipeline runs one dashboard refresh: load, aggregate, forecast,
// derive views and summarize, for the controls the analyst selected.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/config"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/dataset"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/observability"
)

// Source loads the normalized dataset.
type Source interface {
	Load(ctx context.Context) (domain.Table, dataset.Stats, error)
}

// Forecaster fits and predicts one series.
type Forecaster interface {
	Forecast(ctx context.Context, series domain.Series, horizon int) (domain.ForecastResult, error)
}

// Horizon bounds in years.
const (
	MinHorizon = config.MinHorizon
	MaxHorizon = config.MaxHorizon
)

var (
	// ErrUnknownRegion reports a region that does not occur in the dataset.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrInvalidHorizon reports a horizon outside MinHorizon..MaxHorizon.
	ErrInvalidHorizon = errors.New("invalid forecast horizon")
	// ErrUnknownCategory reports a category that does not occur in the dataset.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrNoData reports a dataset without any usable rows.
	ErrNoData = errors.New("dataset has no records")
)

// Params are the analyst's control values for one run.
type Params struct {
	Region              string
	HorizonYears        int
	Category            string
	RunCategoryForecast bool
}

// Pipeline wires the dataset source and forecaster into dashboard runs.
type Pipeline struct {
	source         Source
	forecaster     Forecaster
	defaultHorizon int
	logger         *slog.Logger
	metrics        *observability.Metrics
	ready          atomic.Bool
}

// New creates a Pipeline. defaultHorizon is used when Params.HorizonYears is zero.
func New(source Source, forecaster Forecaster, defaultHorizon int, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:         source,
		forecaster:     forecaster,
		defaultHorizon: defaultHorizon,
		logger:         logger,
		metrics:        metrics,
	}
}

// CheckReadiness returns nil once the dataset has been loaded successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Load reads the dataset and records load statistics. A failure is returned as
// a *dataset.LoadError and marks the dataset as unavailable.
func (p *Pipeline) Load(ctx context.Context) (domain.Table, error) {
	table, stats, err := p.source.Load(ctx)
	if err != nil {
		p.metrics.DatasetLoaded.Set(0)
		return domain.Table{}, err
	}
	if len(table.Records) == 0 {
		p.metrics.DatasetLoaded.Set(0)
		return domain.Table{}, &dataset.LoadError{Source: table.Source, Err: ErrNoData}
	}

	p.metrics.DatasetRowsLoaded.Add(float64(len(table.Records)))
	p.metrics.DatasetRowsSkipped.Add(float64(stats.RowsSkipped))
	p.metrics.DatasetCountsZeroed.Add(float64(stats.CountsZeroed))
	p.metrics.DatasetLoaded.Set(1)
	p.ready.Store(true)

	p.logger.Debug("dataset loaded",
		"source", table.Source,
		"rows_read", stats.RowsRead,
		"rows_skipped", stats.RowsSkipped,
		"counts_zeroed", stats.CountsZeroed,
	)
	return table, nil
}

// Run executes one refresh. Parameter errors wrap ErrUnknownRegion,
// ErrUnknownCategory or ErrInvalidHorizon; load failures wrap *dataset.LoadError.
// Conditions the dashboard can still display around, such as a series too short
// to forecast, are reported as Result warnings instead of errors.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Result, error) {
	start := domain.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	table, err := p.Load(ctx)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
		logger.Error("dataset load failed", "error", err)
		return nil, err
	}

	series := domain.AggregateByRegionYear(table)
	regions := domain.Regions(series)
	categories := domain.Categories(table)

	params, err = p.resolve(params, regions, categories)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("invalid").Inc()
		return nil, err
	}
	logger = logger.With("region", params.Region, "horizon", params.HorizonYears)

	res := &Result{
		RunID:       runID,
		GeneratedAt: start,
		Source:      table.Source,
		Params:      params,
		Regions:     regions,
		Categories:  categories,
		Status:      StatusRendered,
	}
	res.Series, _ = domain.FindSeries(series, params.Region)
	res.History = res.Series.Observations
	res.YearOverYear = domain.YearOverYear(res.Series)
	if year, ok := domain.MaxYear(table); ok {
		res.CategoryYear = year
		res.CategoryShares = domain.CategoryShares(domain.AggregateByCategory(table, params.Region, year))
	}

	if err := p.forecastRegion(ctx, res); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
		logger.Error("forecast failed", "error", err)
		return nil, err
	}

	if params.RunCategoryForecast && params.Category != "" {
		cat, err := p.forecastCategory(ctx, table, params)
		if err != nil {
			p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
			logger.Error("category forecast failed", "category", params.Category, "error", err)
			return nil, err
		}
		res.CategoryForecast = cat
		for _, w := range cat.Warnings {
			p.metrics.RenderWarnings.WithLabelValues(string(w.Kind)).Inc()
		}
	}

	for _, w := range res.Warnings {
		p.metrics.RenderWarnings.WithLabelValues(string(w.Kind)).Inc()
		logger.Warn("dashboard warning", "kind", w.Kind, "message", w.Message)
	}
	p.metrics.PipelineRuns.WithLabelValues(string(res.Status)).Inc()
	logger.Info("pipeline run complete",
		"status", res.Status,
		"warnings", len(res.Warnings),
		"duration", domain.Since(start),
	)
	return res, nil
}

// resolve fills defaults and validates params against the dataset.
func (p *Pipeline) resolve(params Params, regions, categories []string) (Params, error) {
	if params.HorizonYears == 0 {
		params.HorizonYears = p.defaultHorizon
	}
	if params.HorizonYears < MinHorizon || params.HorizonYears > MaxHorizon {
		return params, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidHorizon, params.HorizonYears, MinHorizon, MaxHorizon)
	}

	if params.Region == "" && len(regions) > 0 {
		params.Region = regions[0]
	}
	if !slices.Contains(regions, params.Region) {
		return params, fmt.Errorf("%w: %q", ErrUnknownRegion, params.Region)
	}

	if params.Category != "" && !slices.Contains(categories, params.Category) {
		return params, fmt.Errorf("%w: %q", ErrUnknownCategory, params.Category)
	}
	return params, nil
}

// forecastRegion fills the model-dependent views of res. Only unexpected
// forecaster failures are returned.
func (p *Pipeline) forecastRegion(ctx context.Context, res *Result) error {
	fc, err := p.forecaster.Forecast(ctx, res.Series, res.Params.HorizonYears)
	if errors.Is(err, domain.ErrInsufficientData) {
		res.Status = StatusInsufficientData
		res.Warnings = append(res.Warnings, insufficientDataWarning(res.Series.Region, res.Series.Len()))
		res.Insight = domain.Summarize(res.Series, nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("forecast region %q: %w", res.Series.Region, err)
	}
	res.Forecast = &fc

	components, err := domain.Components(fc)
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarningRender,
			Message: "Seasonality chart could not be generated: the model did not produce usable trend and seasonal components.",
		})
	} else {
		res.Components = components
	}

	res.Future = domain.FutureWindow(fc, res.Series)
	if len(res.Future) == 0 {
		res.Warnings = append(res.Warnings, emptyFutureWarning())
	}
	res.Insight = domain.Summarize(res.Series, res.Future)
	return nil
}

func (p *Pipeline) forecastCategory(ctx context.Context, table domain.Table, params Params) (*CategoryResult, error) {
	series := domain.CategorySeries(table, params.Region, params.Category)
	cat := &CategoryResult{
		Category: params.Category,
		Status:   StatusRendered,
		Series:   series,
	}

	fc, err := p.forecaster.Forecast(ctx, series, params.HorizonYears)
	if errors.Is(err, domain.ErrInsufficientData) {
		cat.Status = StatusInsufficientData
		cat.Warnings = append(cat.Warnings, insufficientDataWarning(params.Category+" in "+params.Region, series.Len()))
		return cat, nil
	}
	if err != nil {
		return nil, fmt.Errorf("forecast category %q: %w", params.Category, err)
	}

	cat.Forecast = &fc
	cat.Future = domain.FutureWindow(fc, series)
	if len(cat.Future) == 0 {
		cat.Warnings = append(cat.Warnings, emptyFutureWarning())
	}
	return cat, nil
}

func insufficientDataWarning(subject string, n int) Warning {
	return Warning{
		Kind: WarningInsufficientData,
		Message: fmt.Sprintf("Not enough data for %s to forecast: %d yearly observation(s), at least %d required.",
			subject, n, domain.MinForecastObservations),
	}
}

func emptyFutureWarning() Warning {
	return Warning{
		Kind:    WarningEmptyFutureWindow,
		Message: "No future forecast data available.",
	}
}
