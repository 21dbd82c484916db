package domain

import "errors"

var (
	// ErrInsufficientData reports a series too short to fit a model. It is an
	// expected outcome, not a failure; callers branch on it with errors.Is.
	ErrInsufficientData = errors.New("insufficient data to forecast")

	// ErrEmptyFutureWindow reports a forecast with no points past the last observation.
	ErrEmptyFutureWindow = errors.New("forecast has no future points")

	// ErrMissingComponents reports a forecast whose trend or seasonal values are unusable.
	ErrMissingComponents = errors.New("forecast components unavailable")
)

// MinForecastObservations is the shortest series the forecast engine will fit.
const MinForecastObservations = 3
