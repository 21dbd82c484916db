package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard pipeline.
type Metrics struct {
	DatasetRowsLoaded   prometheus.Counter
	DatasetRowsSkipped  prometheus.Counter
	DatasetCountsZeroed prometheus.Counter
	DatasetLoaded       prometheus.Gauge

	PipelineRuns   *prometheus.CounterVec // labels: status={rendered,insufficient_data,invalid,failed}
	RenderWarnings *prometheus.CounterVec // labels: kind={insufficient_data,empty_future_window,render_warning}

	// Forecast engine metrics.
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss}
	ForecastFits        *prometheus.CounterVec // labels: outcome={success,error}
	ForecastFitDuration prometheus.Histogram
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetRowsLoaded,
		m.DatasetRowsSkipped,
		m.DatasetCountsZeroed,
		m.DatasetLoaded,
		m.PipelineRuns,
		m.RenderWarnings,
		m.ForecastCache,
		m.ForecastFits,
		m.ForecastFitDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "dataset_rows_loaded_total",
			Help:      "Total normalized rows read from the dataset source.",
		}),
		DatasetRowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "dataset_rows_skipped_total",
			Help:      "Rows dropped because the year could not be parsed.",
		}),
		DatasetCountsZeroed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "dataset_counts_zeroed_total",
			Help:      "Crime-count cells that failed to parse and were treated as zero.",
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_forecast",
			Name:      "dataset_loaded",
			Help:      "1 when the last dataset load succeeded, 0 otherwise.",
		}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "pipeline_runs_total",
			Help:      "Dashboard pipeline runs by final status.",
		}, []string{"status"}),
		RenderWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "render_warnings_total",
			Help:      "Recovered non-fatal conditions by kind.",
		}, []string{"kind"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		ForecastFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_forecast",
			Name:      "forecast_fits_total",
			Help:      "Model fits by outcome.",
		}, []string{"outcome"}),
		ForecastFitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crime_forecast",
			Name:      "forecast_fit_duration_seconds",
			Help:      "Duration of a fit-and-predict call.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}
