// Package forecast fits per-series trend and yearly-seasonality models and
// memoizes their predictions for the lifetime of the process.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/observability"
)

// Fitter trains a model on one series.
type Fitter interface {
	Fit(ctx context.Context, series domain.Series) (Model, error)
}

// Model predicts values and components at arbitrary timestamps.
type Model interface {
	Predict(ctx context.Context, timestamps []time.Time) ([]domain.ForecastPoint, error)
}

// ErrInvalidModelOutput reports a model that did not return one point per
// requested timestamp in ascending order.
var ErrInvalidModelOutput = errors.New("model returned invalid predictions")

// Engine fits a model per (region, category, horizon) at most once and serves
// later requests from an LRU store.
type Engine struct {
	fitter  Fitter
	cache   *resultCache
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an engine. A zero timeout disables the per-fit deadline.
func NewEngine(fitter Fitter, cacheSize int, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		fitter:  fitter,
		cache:   newResultCache(cacheSize),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Forecast returns the fitted history of series plus horizon yearly points
// beyond its last observation. Series shorter than domain.MinForecastObservations
// yield domain.ErrInsufficientData.
func (e *Engine) Forecast(ctx context.Context, series domain.Series, horizon int) (domain.ForecastResult, error) {
	if series.Len() < domain.MinForecastObservations {
		return domain.ForecastResult{}, domain.ErrInsufficientData
	}
	if horizon < 1 {
		return domain.ForecastResult{}, fmt.Errorf("forecast horizon %d: must be at least 1", horizon)
	}

	key := Key{Region: series.Region, Category: series.Category, Horizon: horizon}
	if result, ok := e.cache.get(key); ok {
		e.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	e.metrics.ForecastCache.WithLabelValues("miss").Inc()

	result, err := e.fit(ctx, series, horizon)
	if err != nil {
		e.metrics.ForecastFits.WithLabelValues("error").Inc()
		return domain.ForecastResult{}, fmt.Errorf("forecast %s: %w", describe(key), err)
	}
	e.metrics.ForecastFits.WithLabelValues("success").Inc()

	if evicted := e.cache.put(key, result); evicted {
		e.logger.Debug("forecast cache evicted entry", "size", e.cache.len())
	}
	return result, nil
}

func (e *Engine) fit(ctx context.Context, series domain.Series, horizon int) (domain.ForecastResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := domain.Now()
	defer func() {
		e.metrics.ForecastFitDuration.Observe(domain.Since(start).Seconds())
	}()

	model, err := e.fitter.Fit(ctx, series)
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("fit model: %w", err)
	}

	timestamps := Timestamps(series, horizon)
	points, err := model.Predict(ctx, timestamps)
	if err != nil {
		return domain.ForecastResult{}, fmt.Errorf("predict: %w", err)
	}
	if err := validatePoints(points, timestamps); err != nil {
		return domain.ForecastResult{}, err
	}

	last, _ := series.Last()
	e.logger.Debug("forecast fitted",
		"region", series.Region,
		"category", series.Category,
		"horizon", horizon,
		"observations", series.Len(),
	)
	return domain.ForecastResult{
		Region:         series.Region,
		Category:       series.Category,
		Horizon:        horizon,
		LastHistorical: domain.YearTimestamp(last.Year),
		Points:         points,
	}, nil
}

// Timestamps returns January 1 of every observed year followed by January 1
// of each of the horizon years after the last observation.
func Timestamps(series domain.Series, horizon int) []time.Time {
	ts := series.Timestamps()
	last, ok := series.Last()
	if !ok {
		return ts
	}
	for i := 1; i <= horizon; i++ {
		ts = append(ts, domain.YearTimestamp(last.Year+i))
	}
	return ts
}

func validatePoints(points []domain.ForecastPoint, timestamps []time.Time) error {
	if len(points) != len(timestamps) {
		return fmt.Errorf("%w: got %d points for %d timestamps", ErrInvalidModelOutput, len(points), len(timestamps))
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			return fmt.Errorf("%w: timestamps not strictly ascending at %s", ErrInvalidModelOutput, points[i].Timestamp.Format(time.DateOnly))
		}
	}
	return nil
}

func describe(k Key) string {
	if k.Category == "" {
		return fmt.Sprintf("region=%q horizon=%d", k.Region, k.Horizon)
	}
	return fmt.Sprintf("region=%q category=%q horizon=%d", k.Region, k.Category, k.Horizon)
}
