// Command export runs the dashboard pipeline once and writes the workbook and
// chart images to a directory, for sharing a forecast without the web UI.
//
// Usage:
//
//	go run ./cmd/export -region Kerala -horizon 5 -out out/kerala
//	go run ./cmd/export -region Goa -category Murder -category-forecast -out out/goa
//
// Dataset and model settings come from the same environment variables as the
// dashboard server.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/config"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/dataset"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/forecast"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/observability"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
}

func run() error {
	region := flag.String("region", "", "region to forecast (default: first region)")
	horizon := flag.Int("horizon", 0, "forecast horizon in years, 1-10 (default: FORECAST_DEFAULT_HORIZON)")
	category := flag.String("category", "", "crime category for the optional category forecast")
	categoryForecast := flag.Bool("category-forecast", false, "also forecast -category")
	outDir := flag.String("out", "export", "output directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source, err := dataset.Open(cfg)
	if err != nil {
		return err
	}
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}

	fitter := forecast.NewAdditiveFitter(cfg.FourierOrder, cfg.IntervalWidth)
	engine := forecast.NewEngine(fitter, cfg.CacheSize, cfg.FitTimeout, logger, metrics)
	p := pipeline.New(source, engine, cfg.DefaultHorizon, logger, metrics)

	res, err := p.Run(context.Background(), pipeline.Params{
		Region:              *region,
		HorizonYears:        *horizon,
		Category:            *category,
		RunCategoryForecast: *categoryForecast,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, res); err != nil {
		return err
	}
	if err := writeFile(*outDir, "forecast.xlsx", buf.Bytes()); err != nil {
		return err
	}

	for _, name := range render.Charts {
		buf.Reset()
		err := render.WriteChart(&buf, res, name)
		if errors.Is(err, render.ErrChartUnavailable) {
			continue
		}
		if err != nil {
			return err
		}
		if err := writeFile(*outDir, string(name)+".png", buf.Bytes()); err != nil {
			return err
		}
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning (%s): %s\n", w.Kind, w.Message)
	}
	fmt.Println(res.Insight.Message())
	return nil
}

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
